// Package asynctime 全局时间轮，供定时回调使用
package asynctime

import (
	"time"

	"github.com/RussellLuo/timingwheel"
)

var tw = timingwheel.NewTimingWheel(10*time.Millisecond, 3600)

func init() {
	tw.Start()
}

func AfterFunc(d time.Duration, f func()) *timingwheel.Timer {
	return tw.AfterFunc(d, f)
}
