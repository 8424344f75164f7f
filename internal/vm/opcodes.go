package vm

// Opcode is one VM instruction. Every operand is an unsigned 16-bit
// big-endian value following the opcode byte; jump operands are
// absolute offsets into the same chunk.
type Opcode byte

const (
	OP_CONST Opcode = iota // operand: constant index
	OP_NONE
	OP_POP

	OP_ADD
	OP_SUB
	OP_MUL
	OP_DIV
	OP_MOD
	OP_NEG
	OP_NOT
	OP_CONCAT

	OP_EQ
	OP_NE
	OP_LT
	OP_GT
	OP_LE
	OP_GE
	OP_TRUTHY    // normalize top of stack to Number 1/0
	OP_CHECK_TAG // operand: type-name constant; `X is an NAME`

	OP_GET_VAR    // operand: name constant; resolves through the environment chain
	OP_SET_VAR    // operand: name constant; rebinds the nearest existing binding
	OP_DEFINE_VAR // operand: name constant; binds in the current frame scope

	OP_JUMP          // operand: absolute target
	OP_JUMP_IF_FALSE // operand: absolute target; pops the condition
	OP_JUMP_IF_TRUE  // operand: absolute target; pops the condition

	OP_CALL        // operand: argument count
	OP_RETURN      // pops the result, pops the frame
	OP_RETURN_NONE // pops the frame, result None
	OP_INVOKE_BARE // invoke top of stack with no arguments if callable

	OP_MAKE_FUNCTION // operand: function prototype constant; captures current scope

	OP_MAKE_RECORD // operands: type-name constant, field count, method count
	OP_NEW_RECORD  // operand: field-init pair count; type below pairs on the stack
	OP_GET_FIELD   // operand: name constant; auto-invokes nullary methods
	OP_GET_METHOD  // operand: name constant; pushes the bound method uninvoked
	OP_SET_FIELD   // operand: name constant; stack: receiver, value

	OP_MAKE_VECTOR // operand: element count
	OP_MAKE_TABLE  // operand: pair count; keys are string constants on the stack

	OP_MAKE_RESULT_OK
	OP_MAKE_RESULT_ERR
	OP_RESULT_OK_VALUE
	OP_RESULT_ERR_MSG
	OP_UNWRAP_OR_RETURN // Ok unwraps, Error returns from the enclosing function

	OP_MAKE_CHANNEL // operand: name constant
	OP_SPAWN_TASK   // operand: task-body prototype constant
	OP_CHAN_SEND    // stack: value, channel
	OP_CHAN_RECV    // stack: channel

	OP_HALT
)

// operandCounts maps each opcode to its number of u16 operands.
var operandCounts = [...]int{
	OP_CONST:            1,
	OP_CHECK_TAG:        1,
	OP_GET_VAR:          1,
	OP_SET_VAR:          1,
	OP_DEFINE_VAR:       1,
	OP_JUMP:             1,
	OP_JUMP_IF_FALSE:    1,
	OP_JUMP_IF_TRUE:     1,
	OP_CALL:             1,
	OP_MAKE_FUNCTION:    1,
	OP_MAKE_RECORD:      3,
	OP_NEW_RECORD:       1,
	OP_GET_FIELD:        1,
	OP_GET_METHOD:       1,
	OP_SET_FIELD:        1,
	OP_MAKE_VECTOR:      1,
	OP_MAKE_TABLE:       1,
	OP_MAKE_CHANNEL:     1,
	OP_SPAWN_TASK:       1,
	OP_HALT:             0,
	OP_UNWRAP_OR_RETURN: 0,
}

var opcodeNames = map[Opcode]string{
	OP_CONST:            "OP_CONST",
	OP_NONE:             "OP_NONE",
	OP_POP:              "OP_POP",
	OP_ADD:              "OP_ADD",
	OP_SUB:              "OP_SUB",
	OP_MUL:              "OP_MUL",
	OP_DIV:              "OP_DIV",
	OP_MOD:              "OP_MOD",
	OP_NEG:              "OP_NEG",
	OP_NOT:              "OP_NOT",
	OP_CONCAT:           "OP_CONCAT",
	OP_EQ:               "OP_EQ",
	OP_NE:               "OP_NE",
	OP_LT:               "OP_LT",
	OP_GT:               "OP_GT",
	OP_LE:               "OP_LE",
	OP_GE:               "OP_GE",
	OP_TRUTHY:           "OP_TRUTHY",
	OP_CHECK_TAG:        "OP_CHECK_TAG",
	OP_GET_VAR:          "OP_GET_VAR",
	OP_SET_VAR:          "OP_SET_VAR",
	OP_DEFINE_VAR:       "OP_DEFINE_VAR",
	OP_JUMP:             "OP_JUMP",
	OP_JUMP_IF_FALSE:    "OP_JUMP_IF_FALSE",
	OP_JUMP_IF_TRUE:     "OP_JUMP_IF_TRUE",
	OP_CALL:             "OP_CALL",
	OP_RETURN:           "OP_RETURN",
	OP_RETURN_NONE:      "OP_RETURN_NONE",
	OP_INVOKE_BARE:      "OP_INVOKE_BARE",
	OP_MAKE_FUNCTION:    "OP_MAKE_FUNCTION",
	OP_MAKE_RECORD:      "OP_MAKE_RECORD",
	OP_NEW_RECORD:       "OP_NEW_RECORD",
	OP_GET_FIELD:        "OP_GET_FIELD",
	OP_GET_METHOD:       "OP_GET_METHOD",
	OP_SET_FIELD:        "OP_SET_FIELD",
	OP_MAKE_VECTOR:      "OP_MAKE_VECTOR",
	OP_MAKE_TABLE:       "OP_MAKE_TABLE",
	OP_MAKE_RESULT_OK:   "OP_MAKE_RESULT_OK",
	OP_MAKE_RESULT_ERR:  "OP_MAKE_RESULT_ERR",
	OP_RESULT_OK_VALUE:  "OP_RESULT_OK_VALUE",
	OP_RESULT_ERR_MSG:   "OP_RESULT_ERR_MSG",
	OP_UNWRAP_OR_RETURN: "OP_UNWRAP_OR_RETURN",
	OP_MAKE_CHANNEL:     "OP_MAKE_CHANNEL",
	OP_SPAWN_TASK:       "OP_SPAWN_TASK",
	OP_CHAN_SEND:        "OP_CHAN_SEND",
	OP_CHAN_RECV:        "OP_CHAN_RECV",
	OP_HALT:             "OP_HALT",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "OP_UNKNOWN"
}

// OperandCount reports how many u16 operands follow the opcode.
func (op Opcode) OperandCount() int {
	if int(op) < len(operandCounts) {
		return operandCounts[op]
	}
	return 0
}
