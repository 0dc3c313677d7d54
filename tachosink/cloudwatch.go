package tachosink

import (
	"context"
	"time"

	"github.com/backpack-edge/backpack/timepiece"
	log "github.com/sirupsen/logrus"
)

// UnitSeconds is the CloudWatch unit of tachometer statistics
const UnitSeconds = "Seconds"

// Dimension is a name/value pair of a CloudWatch metric.
type Dimension struct {
	Name  string
	Value string
}

// StatisticSet is a pre-aggregated set of values.
type StatisticSet struct {
	SampleCount float64
	Sum         float64
	Minimum     float64
	Maximum     float64
}

// Datum is one CloudWatch metric datum.
type Datum struct {
	MetricName      string
	Dimensions      []Dimension
	Timestamp       time.Time
	StatisticValues StatisticSet
	Unit            string
}

// Putter sends metric data to CloudWatch, typically an adapter over the
// PutMetricData call of an AWS SDK client.
type Putter interface {
	PutMetricData(ctx context.Context, namespace string, data []Datum) error
}

// CloudWatch sends one statistic set per report.
type CloudWatch struct {
	Namespace  string
	MetricName string
	Dimensions []Dimension
	Timeout    time.Duration

	putter Putter
	log    *log.Entry
}

func NewCloudWatch(namespace, metricName string, dimensions []Dimension, putter Putter) *CloudWatch {
	return &CloudWatch{
		Namespace:  namespace,
		MetricName: metricName,
		Dimensions: dimensions,
		Timeout:    10 * time.Second,
		putter:     putter,
		log:        log.WithField("component", "tachosink").WithField("metric", metricName),
	}
}

// Datum converts the statistics of timer.
func (c *CloudWatch) Datum(ts time.Time, timer timepiece.Timer) Datum {
	return Datum{
		MetricName: c.MetricName,
		Dimensions: c.Dimensions,
		Timestamp:  ts.UTC(),
		StatisticValues: StatisticSet{
			SampleCount: float64(timer.Len()),
			Sum:         timer.Sum(),
			Minimum:     timer.Min(),
			Maximum:     timer.Max(),
		},
		Unit: UnitSeconds,
	}
}

// Stats sends the datum and returns it. Send errors are logged.
func (c *CloudWatch) Stats(ts time.Time, timer timepiece.Timer) any {
	d := c.Datum(ts, timer)
	if c.putter == nil {
		return d
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()
	if err := c.putter.PutMetricData(ctx, c.Namespace, []Datum{d}); err != nil {
		c.log.Warnf("could not put metric data: %s", err)
	}
	return d
}
