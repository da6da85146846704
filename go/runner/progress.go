// progress.go implements the optional progress-display task started for
// time-bounded runs, grounded in the teacher's use of
// github.com/fatih/color for status output (go/flowctl/cmd-test.go,
// go/flowctl-go/cmd-api-build.go).
package runner

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/swarmbench/swarmbench/go/shutdown"
)

var progressGreen = color.New(color.FgGreen).SprintFunc()
var progressYellow = color.New(color.FgYellow).SprintFunc()

// startProgress prints a remaining-time line once a second until duration
// elapses or the shutdown signal fires, whichever comes first. It never
// broadcasts shutdown itself; it only displays the countdown the duration
// timer (see run.go) is already driving.
func startProgress(duration time.Duration, listener *shutdown.Listener) {
	var deadline = time.Now().Add(duration)
	var ticker = time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-listener.Done():
			return
		case now := <-ticker.C:
			var remaining = deadline.Sub(now)
			if remaining < 0 {
				remaining = 0
			}
			var label = progressGreen(remaining.Round(time.Second).String())
			if remaining < 10*time.Second {
				label = progressYellow(remaining.Round(time.Second).String())
			}
			fmt.Printf("\rtime remaining: %s ", label)
			if remaining <= 0 {
				fmt.Println()
				return
			}
		}
	}
}
