// Package pipeline provides a framework for executing scan steps in sequence.
//
// A scan moves through fixed stages: passive page inspection, release
// tag enumeration, the probe sweep, report summarization, and history
// persistence. Each stage is implemented as a Step that receives the
// accumulated report and fills in its part.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running scans
// 4. It keeps per-step fatality policy in one visible place: enumeration
//    and the sweep abort the scan, inspection and persistence absorb
//    their failures
//
// The pipeline supports both individual scans and batch processing with
// concurrency control using errgroup.
package pipeline
