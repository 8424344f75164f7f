package vm

import (
	"encoding/binary"

	"github.com/MatthewMacomber/EngageLang/internal/evaluator"
)

// Chunk is one compiled code unit: the main program or one function
// body. Lines and Columns run parallel to Code so any instruction can
// be mapped back to its source position.
type Chunk struct {
	Name      string
	Code      []byte
	Constants []evaluator.Object
	Lines     []int
	Columns   []int
}

func NewChunk(name string) *Chunk {
	return &Chunk{Name: name}
}

// Emit appends one instruction and returns its offset.
func (c *Chunk) Emit(op Opcode, line, column int, operands ...int) int {
	offset := len(c.Code)
	c.writeByte(byte(op), line, column)
	for _, operand := range operands {
		c.writeOperand(operand, line, column)
	}
	return offset
}

func (c *Chunk) writeByte(b byte, line, column int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
	c.Columns = append(c.Columns, column)
}

func (c *Chunk) writeOperand(v, line, column int) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(v))
	c.writeByte(buf[0], line, column)
	c.writeByte(buf[1], line, column)
}

// PatchOperand rewrites the operand starting at offset in place; used
// to resolve forward jumps after their targets are known.
func (c *Chunk) PatchOperand(offset, v int) {
	binary.BigEndian.PutUint16(c.Code[offset:offset+2], uint16(v))
}

func (c *Chunk) ReadOperand(offset int) int {
	return int(binary.BigEndian.Uint16(c.Code[offset : offset+2]))
}

// AddConstant interns a value into the pool. Number and string
// literals are deduplicated; everything else is appended as-is.
func (c *Chunk) AddConstant(obj evaluator.Object) int {
	switch v := obj.(type) {
	case *evaluator.Number:
		for i, existing := range c.Constants {
			if n, ok := existing.(*evaluator.Number); ok && n.Value == v.Value {
				return i
			}
		}
	case *evaluator.String:
		for i, existing := range c.Constants {
			if s, ok := existing.(*evaluator.String); ok && s.Value == v.Value {
				return i
			}
		}
	}
	c.Constants = append(c.Constants, obj)
	return len(c.Constants) - 1
}

// AddName interns an identifier as a string constant.
func (c *Chunk) AddName(name string) int {
	return c.AddConstant(&evaluator.String{Value: name})
}

// Position reports the source position recorded for the byte at
// offset.
func (c *Chunk) Position(offset int) (line, column int) {
	if offset < 0 || offset >= len(c.Lines) {
		return 0, 0
	}
	return c.Lines[offset], c.Columns[offset]
}
