package vm

import (
	"fmt"
	"strings"
)

// Disassemble renders the chunk as one instruction per line, with
// source lines and constant-pool hints. Function prototypes in the
// constant pool are expanded after the main listing.
func (c *Chunk) Disassemble() string {
	var out strings.Builder
	fmt.Fprintf(&out, "== %s ==\n", c.Name)

	prevLine := -1
	for offset := 0; offset < len(c.Code); {
		op := Opcode(c.Code[offset])
		line, _ := c.Position(offset)
		if line == prevLine {
			fmt.Fprintf(&out, "%04d    | %-20s", offset, op)
		} else {
			fmt.Fprintf(&out, "%04d %4d %-20s", offset, line, op)
			prevLine = line
		}
		offset++

		for i := 0; i < op.OperandCount(); i++ {
			operand := c.ReadOperand(offset)
			offset += 2
			fmt.Fprintf(&out, " %d", operand)
			if i == 0 && usesConstant(op) && operand < len(c.Constants) {
				fmt.Fprintf(&out, " (%s)", c.Constants[operand].Inspect())
			}
		}
		out.WriteByte('\n')
	}

	for _, constant := range c.Constants {
		if cf, ok := constant.(*CompiledFunction); ok {
			out.WriteByte('\n')
			out.WriteString(cf.Chunk.Disassemble())
		}
	}
	return out.String()
}

func usesConstant(op Opcode) bool {
	switch op {
	case OP_CONST, OP_CHECK_TAG, OP_GET_VAR, OP_SET_VAR, OP_DEFINE_VAR,
		OP_MAKE_FUNCTION, OP_MAKE_RECORD, OP_GET_FIELD, OP_GET_METHOD,
		OP_SET_FIELD, OP_MAKE_CHANNEL, OP_SPAWN_TASK:
		return true
	}
	return false
}
