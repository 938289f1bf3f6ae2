// Package history keeps a host's addressable location in step with the
// active route.
//
// A Host is anything that owns an addressable location and a back/forward
// stack: MemoryHost is an in-process stack for tests and headless use,
// WSHost bridges to a browser tab over a WebSocket. The Adapter is the only
// component that writes to a Host. It writes fragment locations
// ("#/publish-video?draft=1"), skips writes that would not change what the
// host shows, and forwards host-driven changes (back, forward, manual edits)
// to a single callback while dropping echoes of its own writes.
//
//	host := history.NewMemoryHost("#/")
//	adapter := history.New(host, logger)
//	stop := adapter.OnExternalChange(func(loc string) { ... })
//	defer stop()
//	err := adapter.Sync(active, history.ModePush)
package history
