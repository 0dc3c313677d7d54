// Package tachosink turns the statistics of a tachometer into metrics.
//
// Each sink has a Stats method with the signature of timepiece.StatsFunc,
// so it can be handed to a tachometer as is:
//
//	sink := tachosink.NewGraphite("backpack.camera", "frame_processing", conn)
//	tach, err := timepiece.NewStopWatchTachometer(sink.Stats, time.Minute, nil, nil)
package tachosink
