package cpu

// Sp returns the stack pointer.
func (cpu *Cpu) Sp() uint32 {
	return cpu.Register[REG_SP]
}

// SetSp sets the stack pointer.
func (cpu *Cpu) SetSp(value uint32) {
	cpu.Register[REG_SP] = value
}

// Push decrements the stack pointer by one slot, then stores value there.
func (cpu *Cpu) Push(value uint32) (err error) {
	sp := cpu.Sp() - STACK_SLOT
	err = cpu.Memory.Store(sp, STACK_SLOT, value)
	if err != nil {
		return
	}
	cpu.SetSp(sp)
	return
}

// Pop loads the value at the stack pointer, then increments it by one slot.
func (cpu *Cpu) Pop() (value uint32, err error) {
	sp := cpu.Sp()
	value, err = cpu.Memory.Load(sp, STACK_SLOT)
	if err != nil {
		return
	}
	cpu.SetSp(sp + STACK_SLOT)
	return
}

// Peek loads the value at the stack pointer.
func (cpu *Cpu) Peek() (value uint32, ok bool) {
	sp := cpu.Sp()
	if !cpu.Memory.inRange(sp, STACK_SLOT) {
		return
	}
	value, _ = cpu.Memory.Load(sp, STACK_SLOT)
	return value, true
}

// StackDepth returns the number of slots between the stack pointer and
// the top of memory.
func (cpu *Cpu) StackDepth() int {
	sp := cpu.Sp()
	if sp > cpu.Memory.Size() {
		return 0
	}
	return int(cpu.Memory.Size()-sp) / STACK_SLOT
}
