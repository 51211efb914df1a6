package dateutil

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestWeekday(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		day   int
		want  time.Weekday
	}{
		{2021, time.March, 23, time.Tuesday},
		{2021, time.March, 28, time.Sunday},
		{2020, time.February, 29, time.Saturday},
		{2000, time.January, 1, time.Saturday},
	}
	for _, c := range cases {
		got := Weekday(c.year, c.month, c.day)
		if got != c.want {
			t.Errorf("Weekday(%d, %s, %d) = %s, want %s", c.year, c.month, c.day, got, c.want)
		}
	}
}

func TestLastWeekday(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		wd    time.Weekday
		want  int
	}{
		{2021, time.March, time.Sunday, 28},
		{2020, time.February, time.Saturday, 29},
	}
	for _, c := range cases {
		got := LastWeekday(c.year, c.month, c.wd)
		if got != c.want {
			t.Errorf("LastWeekday(%d, %s, %s) = %d, want %d", c.year, c.month, c.wd, got, c.want)
		}
	}
}

func TestOnOrAfter(t *testing.T) {
	type want struct {
		Year  int
		Month time.Month
		Day   int
	}
	cases := []struct {
		name          string
		year          int
		month         time.Month
		day           int
		wd            time.Weekday
		want          want
	}{
		{"exact day", 2021, time.March, 28, time.Sunday, want{2021, time.March, 28}},
		{"later same month", 2021, time.March, 15, time.Sunday, want{2021, time.March, 21}},
		{"spills to next month", 2021, time.March, 30, time.Sunday, want{2021, time.April, 4}},
		{"spills to next year", 2021, time.December, 30, time.Sunday, want{2022, time.January, 2}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			y, m, d := OnOrAfter(c.year, c.month, c.day, c.wd)
			got := want{y, m, d}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("OnOrAfter(...) mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOnOrBefore(t *testing.T) {
	type want struct {
		Year  int
		Month time.Month
		Day   int
	}
	cases := []struct {
		name  string
		year  int
		month time.Month
		day   int
		wd    time.Weekday
		want  want
	}{
		{"exact day", 2021, time.March, 28, time.Sunday, want{2021, time.March, 28}},
		{"earlier same month", 2021, time.March, 15, time.Sunday, want{2021, time.March, 14}},
		{"spills to previous month", 2021, time.March, 5, time.Sunday, want{2021, time.February, 28}},
		{"spills to previous year", 2021, time.January, 2, time.Sunday, want{2020, time.December, 27}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			y, m, d := OnOrBefore(c.year, c.month, c.day, c.wd)
			got := want{y, m, d}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("OnOrBefore(...) mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
