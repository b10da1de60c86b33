package scheduler

import (
	"errors"
	"time"
)

// ErrCalendarExhausted 在前瞻范围内找不到足够的工作时段
var ErrCalendarExhausted = errors.New("日历前瞻范围内无可用时段")

// Window 可用时段，半开区间 [Start, End)
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Block 日内时段，分钟自零点计，[StartMinute, EndMinute)
type Block struct {
	StartMinute int
	EndMinute   int
}

// DateRange 日期区间，含两端日期
type DateRange struct {
	From time.Time
	To   time.Time
}

// Calendar 单个工人的排班配置。解析优先级：
// 个人覆盖 > 通道班次时段，再扣除缺勤日期。
// 各工人独立解析，不做跨工人的区间合并。
type Calendar struct {
	// Shifts 公司级班次时段，key 为 time.Weekday
	Shifts map[time.Weekday][]Block
	// Overrides 个人排班覆盖，key 为日期 "2006-01-02"，存在即完全取代当日班次
	Overrides map[string][]Block
	// Absences 缺勤日期区间
	Absences []DateRange
}

// Provider 班次日历解析器。HorizonDays 限定前瞻天数，
// 保证所有日历查询有界。
type Provider struct {
	HorizonDays int
}

// NewProvider 创建日历解析器，horizonDays<=0 时取默认14天
func NewProvider(horizonDays int) Provider {
	if horizonDays <= 0 {
		horizonDays = 14
	}
	return Provider{HorizonDays: horizonDays}
}

const dateLayout = "2006-01-02"

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (c Calendar) absent(day time.Time) bool {
	for _, r := range c.Absences {
		from := dayStart(r.From)
		to := dayStart(r.To)
		if !day.Before(from) && !day.After(to) {
			return true
		}
	}
	return false
}

func (c Calendar) blocksFor(day time.Time) []Block {
	if ov, ok := c.Overrides[day.Format(dateLayout)]; ok {
		return ov
	}
	return c.Shifts[day.Weekday()]
}

// Windows 返回自 from 起、前瞻范围内的可用时段，按开始时间升序。
// 首个时段被 from 截断；过去的时段不返回。
func (p Provider) Windows(cal Calendar, from time.Time) []Window {
	var windows []Window
	day := dayStart(from)
	for i := 0; i < p.HorizonDays; i++ {
		if !cal.absent(day) {
			for _, b := range cal.blocksFor(day) {
				start := day.Add(time.Duration(b.StartMinute) * time.Minute)
				end := day.Add(time.Duration(b.EndMinute) * time.Minute)
				if !end.After(from) {
					continue
				}
				if start.Before(from) {
					start = from
				}
				if start.Before(end) {
					windows = append(windows, Window{Start: start, End: end})
				}
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return windows
}

// PlaceDuration 从 from 起寻找能容纳 minutes 的排程区间。
// 返回的开始时间为首个有容量的时段起点；时长不够时跨越后续时段
// 累计净工作时间（不含间隙）。前瞻范围内放不下时返回 ErrCalendarExhausted。
func (p Provider) PlaceDuration(cal Calendar, from time.Time, minutes float64) (time.Time, time.Time, error) {
	if minutes <= 0 {
		return time.Time{}, time.Time{}, errors.New("排程时长必须大于零")
	}
	remaining := time.Duration(minutes * float64(time.Minute))

	var start time.Time
	for _, w := range p.Windows(cal, from) {
		if start.IsZero() {
			start = w.Start
		}
		capacity := w.End.Sub(w.Start)
		if capacity >= remaining {
			return start, w.Start.Add(remaining), nil
		}
		remaining -= capacity
	}
	return time.Time{}, time.Time{}, ErrCalendarExhausted
}
