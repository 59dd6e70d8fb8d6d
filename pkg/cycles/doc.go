// Package cycles reshapes machine-cycle measurement documents into chart
// series.
//
// Two documents describe a machine: a prediction document with one entry per
// cycle (keyed by the cycle's epoch time in seconds) holding a distance and
// an anomaly flag per tool, and a changelog holding the learned threshold,
// the ideal signal and the validation limits per tool. [FilterByTool] turns
// both into a [Series] for a scatter plot.
//
// A cycle-data document holds the raw signals of individual cycles.
// [MapCycleData] extracts the first signal of one cycle as an x/y series, and
// [AlignIdeal] pairs the ideal signal with its time points for a comparison
// plot.
//
// [XTicks], [YTicks] and [Bounds] derive axis ticks and ranges, and
// [PointColor] the colour of a scatter point.
package cycles
