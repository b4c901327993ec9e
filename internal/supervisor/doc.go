// Package supervisor owns the lifecycle of a single local model-serving
// subprocess (an OpenAI-compatible vLLM server). It is split by concern:
//
//   - config.go: Config and package defaults; New applies defaults.
//   - types.go: the tagged process state and the Snapshot projection.
//   - errors.go: usage errors, HealthTimeoutError, ProcessExitedError.
//   - supervisor.go: Start, Terminate and Status.
//   - health.go: WaitForHealth polling loop and single probes.
//   - proc_unix.go, proc_other.go: process-group setup and signalling.
//   - output.go: non-blocking capture of the child's stdout/stderr.
//   - reclaim.go: MemoryReclaimer capability (accelerator cache release).
//   - events.go, metrics.go: lifecycle events and Prometheus collectors.
//
// A Supervisor is meant for single-owner sequential use: the caller runs
// Start, then WaitForHealth, then Terminate. Terminate is safe to call any
// number of times, including before Start.
package supervisor
