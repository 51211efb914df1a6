package tzdata

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParse_ExtendedExample(t *testing.T) {
	input := strings.TrimSpace(`
# Rule  NAME  FROM  TO    -  IN   ON       AT    SAVE  LETTER/S
Rule    Swiss 1941  1942  -  May  Mon>=1   1:00  1:00  S
Rule    Swiss 1941  1942  -  Oct  Mon>=1   2:00  0     -
Rule    EU    1977  1980  -  Apr  Sun>=1   1:00u 1:00  S
Rule    EU    1977  only  -  Sep  lastSun  1:00u 0     -
Rule    EU    1981  max   -  Mar  lastSun  1:00u 1:00  S

# Zone  NAME           STDOFF      RULES  FORMAT  [UNTIL]
Zone    Europe/Zurich  0:34:08     -      LMT     1853 Jul 16
                       0:29:45.50  -      BMT     1894 Jun
                       1:00        Swiss  CE%sT   1981
                       1:00        EU     CE%sT

Link    Europe/Zurich  Europe/Vaduz
`)

	f, err := Parse("test", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}

	wantRules := []RuleLine{
		{Name: "Swiss", From: 1941, To: 1942, Month: time.May, On: DaySpec{Form: DayFormOnOrAfter, Weekday: time.Monday, Num: 1}, At: TimeOfDay{Seconds: 3600, Indicator: Wall}, Save: TimeOfDay{Seconds: 3600, Indicator: Wall}, Letter: "S"},
		{Name: "Swiss", From: 1941, To: 1942, Month: time.October, On: DaySpec{Form: DayFormOnOrAfter, Weekday: time.Monday, Num: 1}, At: TimeOfDay{Seconds: 7200, Indicator: Wall}, Save: TimeOfDay{Seconds: 0, Indicator: Wall}},
		{Name: "EU", From: 1977, To: 1980, Month: time.April, On: DaySpec{Form: DayFormOnOrAfter, Weekday: time.Sunday, Num: 1}, At: TimeOfDay{Seconds: 3600, Indicator: UTC}, Save: TimeOfDay{Seconds: 3600, Indicator: Wall}, Letter: "S"},
		{Name: "EU", From: 1977, To: 1977, Month: time.September, On: DaySpec{Form: DayFormLast, Weekday: time.Sunday}, At: TimeOfDay{Seconds: 3600, Indicator: UTC}, Save: TimeOfDay{Seconds: 0, Indicator: Wall}},
		{Name: "EU", From: 1981, To: MaxYear, Month: time.March, On: DaySpec{Form: DayFormLast, Weekday: time.Sunday}, At: TimeOfDay{Seconds: 3600, Indicator: UTC}, Save: TimeOfDay{Seconds: 3600, Indicator: Wall}, Letter: "S"},
	}
	if diff := cmp.Diff(wantRules, f.Rules); diff != "" {
		t.Errorf("Rules mismatch (-want +got):\n%s", diff)
	}

	wantZones := []ZoneLine{
		{Name: "Europe/Zurich", RawOffset: 34*60 + 8, Rules: ZoneRules{Form: ZoneRulesStandard}, Format: "LMT", Until: Until{Defined: true, Year: 1853, Month: time.July, Day: DaySpec{Form: DayFormNum, Num: 16}, Parts: UntilYear | UntilMonth | UntilDay}},
		{Continuation: true, RawOffset: 29*60 + 45, Rules: ZoneRules{Form: ZoneRulesStandard}, Format: "BMT", Until: Until{Defined: true, Year: 1894, Month: time.June, Day: DaySpec{Form: DayFormNum, Num: 1}, Parts: UntilYear | UntilMonth}},
		{Continuation: true, RawOffset: 3600, Rules: ZoneRules{Form: ZoneRulesName, Name: "Swiss"}, Format: "CE%sT", Until: Until{Defined: true, Year: 1981, Month: time.January, Day: DaySpec{Form: DayFormNum, Num: 1}, Parts: UntilYear}},
		{Continuation: true, RawOffset: 3600, Rules: ZoneRules{Form: ZoneRulesName, Name: "EU"}, Format: "CE%sT", Until: Until{Defined: false}},
	}
	if diff := cmp.Diff(wantZones, f.Zones); diff != "" {
		t.Errorf("Zones mismatch (-want +got):\n%s", diff)
	}

	wantLinks := []LinkLine{{Target: "Europe/Zurich", Alias: "Europe/Vaduz"}}
	if diff := cmp.Diff(wantLinks, f.Links); diff != "" {
		t.Errorf("Links mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_FractionalSecondTruncated(t *testing.T) {
	f, err := Parse("test", strings.NewReader("Zone Test 0:00:01.75 - GMT"))
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if len(f.Zones) != 1 {
		t.Fatalf("got %d zones, want 1", len(f.Zones))
	}
	if f.Zones[0].RawOffset != 1 {
		t.Errorf("RawOffset = %d, want 1 (fractional second truncated)", f.Zones[0].RawOffset)
	}
}

func TestParse_QuotedFieldsPreserveWhitespace(t *testing.T) {
	f, err := Parse("test", strings.NewReader(`Zone "Area/With Space" 0:00 - GMT`))
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if len(f.Zones) != 1 || f.Zones[0].Name != "Area/With Space" {
		t.Fatalf("got zones %+v, want one zone named %q", f.Zones, "Area/With Space")
	}
}

func TestParse_LeapLine(t *testing.T) {
	f, err := Parse("test", strings.NewReader("Leap 1972 Jun 30 23:59:60 + S"))
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	want := []LeapLine{{Year: 1972, Month: time.June, Day: 30, Correction: LeapInsert}}
	if diff := cmp.Diff(want, f.Leaps); diff != "" {
		t.Errorf("Leaps mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_LeapLineRejectsWrongTime(t *testing.T) {
	_, err := Parse("test", strings.NewReader("Leap 1972 Jun 30 23:59:59 + S"))
	if err == nil {
		t.Fatal("Parse: expected error for leap line with wrong time-of-day, got nil")
	}
}

func TestParse_LeapLineRejectsRolling(t *testing.T) {
	_, err := Parse("test", strings.NewReader("Leap 1972 Jun 30 23:59:60 + R"))
	if err == nil {
		t.Fatal("Parse: expected error for non-stationary leap line, got nil")
	}
}

func TestParse_RuleTypeColumnWarns(t *testing.T) {
	f, err := Parse("test", strings.NewReader("Rule Odd 1980 1980 odd Mar lastSun 1:00 1:00 S"))
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if len(f.Rules) != 0 {
		t.Fatalf("got %d rules, want 0 (line with a TYPE skipped)", len(f.Rules))
	}
	if len(f.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(f.Warnings))
	}
}

func TestParse_UnrecognizedLine(t *testing.T) {
	_, err := Parse("test", strings.NewReader("Bogus line here"))
	if err == nil {
		t.Fatal("Parse: expected error for unrecognized line, got nil")
	}
}

func TestScanExpiryComment(t *testing.T) {
	line := "#@	3926419200"
	got, ok := scanExpiryComment(line)
	if !ok {
		t.Fatal("scanExpiryComment: expected ok=true")
	}
	const want = 3926419200 - ntpEpochOffset
	if got != want {
		t.Errorf("scanExpiryComment = %d, want %d", got, want)
	}
}
