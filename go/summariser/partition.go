package summariser

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// unpartitionedKey is the group key used when tags is empty: the whole
// frame forms a single, unlabeled group.
const unpartitionedKey = ""

// Partition is the result of PartitionByTags: either the frame wasn't split
// (Partitioned is false, and Groups holds a single entry under
// unpartitionedKey) or it was split into one sub-Frame per distinct
// combination of tag values observed (Partitioned is true).
//
// Grounded in summariser/src/partition.rs.
type Partition struct {
	Partitioned bool
	Groups      map[string]Frame
}

// Unpartitioned returns the single Frame covering every row, valid only
// when p.Partitioned is false.
func (p Partition) Unpartitioned() Frame {
	return p.Groups[unpartitionedKey]
}

// PartitionByTags splits f into one Frame per distinct combination of
// values across tags, with group keys of the form "tag1=value1,tag2=value2"
// (tags in the order given). Repeating a tag name is an error. An empty
// tags slice returns an unpartitioned Partition wrapping f as-is.
func PartitionByTags(f Frame, tags []string) (Partition, error) {
	if len(tags) == 0 {
		return Partition{Partitioned: false, Groups: map[string]Frame{unpartitionedKey: f}}, nil
	}

	var seenTag = make(map[string]bool, len(tags))
	for _, tag := range tags {
		if seenTag[tag] {
			return Partition{}, fmt.Errorf("summariser: duplicate tag name: %s", tag)
		}
		seenTag[tag] = true
	}

	var columns = make([][]string, len(tags))
	for i, tag := range tags {
		var col, err = f.TagColumn(tag)
		if err != nil {
			return Partition{}, err
		}
		if len(col) != f.Len() {
			return Partition{}, fmt.Errorf("summariser: tag column %q has %d rows, frame has %d", tag, len(col), f.Len())
		}
		columns[i] = col
	}

	var order []string
	var rowsByKey = map[string][]int{}
	for row := 0; row < f.Len(); row++ {
		var parts = make([]string, len(tags))
		for i, tag := range tags {
			parts[i] = fmt.Sprintf("%s=%s", tag, columns[i][row])
		}
		var key = strings.Join(parts, ",")
		if _, seen := rowsByKey[key]; !seen {
			order = append(order, key)
		}
		rowsByKey[key] = append(rowsByKey[key], row)
	}
	sort.Strings(order)

	var groups = make(map[string]Frame, len(order))
	for _, key := range order {
		groups[key] = subFrame(f, rowsByKey[key])
	}
	return Partition{Partitioned: true, Groups: groups}, nil
}

func subFrame(f Frame, rows []int) Frame {
	var out = Frame{
		Time:    make([]time.Time, len(rows)),
		Numeric: make(map[string][]float64, len(f.Numeric)),
		Tags:    make(map[string][]string, len(f.Tags)),
	}
	for i, row := range rows {
		out.Time[i] = f.Time[row]
	}
	for name, col := range f.Numeric {
		var newCol = make([]float64, len(rows))
		for i, row := range rows {
			newCol[i] = col[row]
		}
		out.Numeric[name] = newCol
	}
	for name, col := range f.Tags {
		var newCol = make([]string, len(rows))
		for i, row := range rows {
			newCol[i] = col[row]
		}
		out.Tags[name] = newCol
	}
	return out
}
