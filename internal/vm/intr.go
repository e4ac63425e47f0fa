package vm

// intr.go is the interrupt controller: a non-blocking poll of the inbound interrupt
// channel, vector-table lookup, and K0 save/restore around dispatch.

// pollInterrupt delivers at most one pending interrupt, if interrupts are enabled.
// On delivery: interrupts are disabled, the current pc is saved into k0, and pc is set
// to the word at the interrupt's vector address; it reports dispatched=true so the
// caller knows pc now holds the handler's address and must not be advanced again this
// step. It never blocks: if no interrupt is queued, the step proceeds normally.
func (cpu *CPU) pollInterrupt() (dispatched bool, err error) {
	if !cpu.IntrEnabled {
		return false, nil
	}

	var in Interrupt

	select {
	case in = <-cpu.interrupts:
	default:
		return false, nil
	}

	vector, err := cpu.Mem.ReadWord(in.Vector)
	if err != nil {
		return false, err
	}

	cpu.IntrEnabled = false
	cpu.Regs.Set(K0, cpu.PC)
	cpu.PC = vector

	cpu.log.Debug("interrupt dispatched", "VECTOR", in.Vector, "TARGET", vector)

	return true, nil
}
