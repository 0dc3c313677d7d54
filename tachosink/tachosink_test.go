package tachosink

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/backpack-edge/backpack/timepiece"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func intervals(values ...float64) *timepiece.Intervals {
	iv := timepiece.NewIntervals(len(values))
	for _, v := range values {
		iv.Record(v)
	}
	return iv
}

type fakePutter struct {
	namespace string
	data      []Datum
	err       error
}

func (p *fakePutter) PutMetricData(ctx context.Context, namespace string, data []Datum) error {
	p.namespace = namespace
	p.data = append(p.data, data...)
	return p.err
}

func TestCloudWatch(t *testing.T) {
	ts := time.Date(2021, 3, 4, 5, 6, 7, 0, time.FixedZone("CET", 3600))
	dims := []Dimension{{Name: "StreamName", Value: "camera-1"}}
	exp := Datum{
		MetricName: "frame_processing",
		Dimensions: dims,
		Timestamp:  ts.UTC(),
		StatisticValues: StatisticSet{
			SampleCount: 3,
			Sum:         1.5,
			Minimum:     0.25,
			Maximum:     0.75,
		},
		Unit: UnitSeconds,
	}

	putter := &fakePutter{}
	cw := NewCloudWatch("Backpack", "frame_processing", dims, putter)
	got := cw.Stats(ts, intervals(0.25, 0.5, 0.75))
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Fatalf("datum mismatch (-want +got):\n%s", diff)
	}
	if putter.namespace != "Backpack" || len(putter.data) != 1 {
		t.Fatalf("expected one datum in namespace Backpack, got %d in %q", len(putter.data), putter.namespace)
	}

	putter.err = errors.New("throttled")
	if diff := cmp.Diff(exp, cw.Stats(ts, intervals(0.25, 0.5, 0.75))); diff != "" {
		t.Fatalf("datum should be returned on send failure (-want +got):\n%s", diff)
	}
}

func TestGraphite(t *testing.T) {
	var out bytes.Buffer
	g := NewGraphite("backpack.camera", "frame_processing", &out)
	res := g.Stats(time.Unix(60, 0), intervals(0.25, 0.5, 0.75)).([]byte)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	exp := []string{
		"backpack.camera.frame_processing.count 3 60",
		"backpack.camera.frame_processing.sum 1.5 60",
		"backpack.camera.frame_processing.min 0.25 60",
		"backpack.camera.frame_processing.mean 0.5 60",
		"backpack.camera.frame_processing.max 0.75 60",
	}
	if len(lines) != 8 {
		t.Fatalf("expected 8 lines, got %d: %q", len(lines), lines)
	}
	if diff := cmp.Diff(exp, lines[:5]); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	for i, key := range []string{"p50", "p90", "p99"} {
		if !strings.HasPrefix(lines[5+i], "backpack.camera.frame_processing."+key+" ") {
			t.Fatalf("expected %s line, got %q", key, lines[5+i])
		}
	}
	if !bytes.Equal(res, out.Bytes()) {
		t.Fatalf("result should be the written lines")
	}
}

func TestGraphiteQuantiles(t *testing.T) {
	g := NewGraphite("", "loop", nil)
	res := string(g.Stats(time.Unix(10, 0), intervals(0.5, 0.5, 0.5, 0.5)).([]byte))
	for _, line := range []string{"loop.p50 0.5 10\n", "loop.p90 0.5 10\n", "loop.p99 0.5 10\n"} {
		if !strings.Contains(res, line) {
			t.Fatalf("expected %q in %q", line, res)
		}
	}
}

func TestPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus("backpack", "frame_processing", reg)
	p.Stats(time.Unix(0, 0), intervals(0.5, 0.5))
	p.Stats(time.Unix(60, 0), intervals(0.25, 0.25, 0.25))

	cases := map[string]float64{"min": 0.25, "mean": 0.25, "max": 0.25, "p90": 0.25}
	for stat, exp := range cases {
		if got := testutil.ToFloat64(p.seconds.WithLabelValues(stat)); got != exp {
			t.Fatalf("stat %s: expected %f, got %f", stat, exp, got)
		}
	}
	if got := testutil.ToFloat64(p.events); got != 5 {
		t.Fatalf("expected 5 events, got %f", got)
	}
}
