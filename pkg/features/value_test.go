package features

import (
	"encoding/json"
	"math"
	"testing"
)

func TestValueFormat(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Null(), "?"},
		{Number(0), "0"},
		{Number(2.5), "2.5"},
		{Number(61), "61"},
		{Bool(true), "True"},
		{Bool(false), "False"},
		{String("abandoned"), "abandoned"},
	}
	for _, c := range cases {
		if got := c.v.Format(); got != c.want {
			t.Errorf("Format(%v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	for _, v := range []Value{Null(), Number(3.25), Bool(true), String("x")} {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		var back Value
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatal(err)
		}
		if back != v {
			t.Errorf("round trip %v -> %s -> %v", v, data, back)
		}
	}
}

func TestMeanAndStdev(t *testing.T) {
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if m := mean(data); m != 5 {
		t.Errorf("mean = %v", m)
	}
	// sample standard deviation of the set above
	if s := sampleStdev(data); math.Abs(s-2.13809) > 1e-4 {
		t.Errorf("stdev = %v", s)
	}
}
