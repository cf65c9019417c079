// Package shutdown coordinates graceful process termination.
//
// A Handler waits for SIGINT, SIGTERM or an explicit Trigger, then runs the
// registered hooks in reverse order under a shared timeout:
//
//	h := shutdown.NewHandler(10*time.Second, log)
//	h.OnShutdown("resp", srv.Shutdown)
//	err := h.Wait()
package shutdown
