package lir

// ConstKind tags the payload held in a Function's constant pool.
type ConstKind int

const (
	ConstI32 ConstKind = iota
	ConstI64
	ConstF64
	ConstBool
	ConstStr
	ConstNil
)

// Const is one entry of a function's constant pool, referenced by
// LoadConst instructions via an index.
type Const struct {
	Kind ConstKind
	I int64
	F float64
	B bool
	S string
}

// Instruction is one LIR op: at most one destination, up
// to two source registers, an optional immediate/constant index, and
// call metadata when Op is Call/CallBuiltin. Fields unused by a given Op
// are left zero.
type Instruction struct {
	Op Opcode
	ResultType ABIType
	Dst Reg
	Src1, Src2, Src3 Reg
	HasImm bool
	Imm int64
	HasConst bool
	ConstIdx int

	// Call/CallBuiltin only.
	Callee string
	Args []Reg

	// Jump: Target is the sole successor. JumpIf/JumpIfFalse: Target is
	// the branch taken when the condition matches (true for JumpIf,
	// false for JumpIfFalse); Target2 is the other, always-present edge
	// — a CFG has no implicit fallthrough, so both successors of a
	// conditional are explicit data on the instruction itself.
	Target int
	Target2 int

	// ConstructErr/ConstructOk/PropagateError: the error ABI payload
	// register, when distinct from Src1.
	ErrReg Reg

	// Alloc/LoadField/StoreField/LoadVTable: the class that defines the
	// instance's layout and, for LoadVTable, the method being resolved.
	ClassName string
	MethodName string
	FieldIndex int

	// MakeList/MakeDict/MakeTuple/AllocClosure: the element or captured
	// registers, in order.
	Elems []Reg
}

// NewInstr returns an Instruction of the given Op with every register
// operand defaulted to NoReg, so callers only need to set the operands
// they actually use.
func NewInstr(op Opcode) Instruction {
	return Instruction{Op: op, Dst: NoReg, Src1: NoReg, Src2: NoReg, Src3: NoReg, ErrReg: NoReg}
}
