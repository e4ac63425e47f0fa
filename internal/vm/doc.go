/*
Package vm implements the lark engine: a 16-bit RISC machine with sixteen
general-purpose registers, a flat 64 KiB byte-addressable memory, and a small
fixed instruction set.

# CPU

The CPU holds:

  - a 16-bit program counter (pc) and a 32-bit instruction fetch buffer (IR),
    assembled from two consecutive 16-bit memory words
  - sixteen general-purpose registers, named per the calling convention
    (zero, rv, ra, a0-a2, s0-s2, t0-t2, k0-k1, gp, sp); zero always reads as
    zero and discards writes
  - a pair of wide multiply/divide registers, hi and lo
  - an interrupt-enable flag and the engine's operating mode (running,
    halted, or debug-paused)

# Memory

The address space is 64 KiB, divided into four fixed segments: a 2 KiB
memory-mapped I/O window at the bottom, a 4 KiB ROM segment holding the
loaded program image, 54 KiB of user RAM, and a 4 KiB kernel RAM segment at
the top holding the interrupt vector table. Words are stored big-endian: the
byte at the lower address is the high half.

The MMIO window maps a shared virtual-terminal framebuffer and a legacy
control byte; unlike the rest of memory, a 16-bit write into the
framebuffer lands little-endian, a quirk of the device and not of the CPU.

# Instruction cycle

Each step polls for at most one pending interrupt, fetches a 32-bit
instruction word, decodes it according to one of eight fixed encoding
shapes, executes it against the registers and memory, and advances pc by the
instruction's byte size unless the opcode already redirected control flow.

# Signals and interrupts

The engine is the sole producer on an outbound channel of signals (halts,
breakpoints, illegal instructions, and loggable events) and the sole
consumer of an inbound channel of interrupt requests; a supervisor outside
the package drains one and feeds the other. Neither channel ever blocks the
engine: a send to a full channel is dropped and a warning is logged.
*/
package vm
