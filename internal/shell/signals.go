package shell

import (
	"os"
	"os/signal"
	"syscall"
)

// NotifySignals routes the interrupt and quit signals to a channel. The
// shell reacts to them at one point in its loop instead of inside a handler.
// The returned function restores default delivery.
func NotifySignals() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGQUIT)
	return ch, func() {
		signal.Stop(ch)
	}
}

func isInterrupt(sig os.Signal) bool {
	return sig == syscall.SIGINT || sig == os.Interrupt
}

func isQuit(sig os.Signal) bool {
	return sig == syscall.SIGQUIT
}
