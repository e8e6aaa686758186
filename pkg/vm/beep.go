package vm

import (
	"strconv"
	"strings"

	"github.com/zurustar/trace/pkg/token"
)

// beep writes a diagnostic for an "@payload@" token. It never changes the
// frame's value.
//
//	@&3@   memory slot 3
//	@&i@   memory slot addressed by variable i
//	@=x@   variable x
//	@text@ the text itself
func (e *execution) beep(f *Frame, t token.Token) {
	e.vm.metrics.ObserveBeep()
	payload := t.Text

	switch {
	case strings.HasPrefix(payload, "&") && len(payload) > 1:
		ref := payload[1:]
		var addr float64
		if ref[0] >= '0' && ref[0] <= '9' {
			addr = token.ParseNumber(ref)
		} else {
			addr = e.vars.Value(ref)
			ref = strconv.FormatFloat(addr, 'g', -1, 64)
		}
		e.vm.diagnostics.Info("beep", "token", f.pc, "ref", "&"+ref, "value", f.memory.Load(addr))

	case strings.HasPrefix(payload, "="):
		name := payload[1:]
		e.vm.diagnostics.Info("beep", "token", f.pc, "ref", name, "value", e.vars.Value(name))

	default:
		e.vm.diagnostics.Info("beep", "token", f.pc, "text", payload)
	}
}
