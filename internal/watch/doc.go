// Package watch turns raw filesystem watch notifications into resource change events.
//
// An Executor drains one watch key per poll cycle, drops what the caller's Filter rejects,
// classifies the rest and either fires a single typed event or one batch event covering
// every affected path. Executors hold no state between cycles, so one instance can serve
// several watch keys concurrently as long as its ResourceObserver tolerates that.
package watch
