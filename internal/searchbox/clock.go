package searchbox

import "time"

// Timer 可取消的定时器
type Timer interface {
	Stop() bool
}

// Clock 定时器来源，测试中替换为手动时钟
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock 系统时钟
func RealClock() Clock {
	return realClock{}
}
