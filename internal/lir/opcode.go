package lir

// Opcode is one LIR instruction kind, grouped into the families listed
// in the const block below.
type Opcode int

const (
	// Data movement
	Mov Opcode = iota
	LoadConst
	Cast

	// Arithmetic (signed/float forms distinguished by the destination's ABI type)
	Add
	Sub
	Mul
	Div
	Mod
	Neg

	// Bitwise
	And
	Or
	Xor

	// Comparisons (always produce a Bool register)
	CmpEq
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe

	// Control flow
	Jump
	JumpIf
	JumpIfFalse
	Return
	Ret

	// Function operations
	Call
	CallBuiltin
	CallIndirect // call through a function pointer register (vtable dispatch)

	// String operations
	StrConcat
	StrFormat
	ToString

	// Print family, parameterized by the printed value's ABI type
	Print

	// Optional/error operations
	ConstructOk
	ConstructErr
	IsError
	IsSuccess
	UnwrapValue
	PropagateError
	CheckError

	// Concurrency hooks — opaque task-context handles, no in-VM scheduler
	TaskContextAlloc
	TaskContextInit
	TaskSetField
	TaskGetField
	ChannelAlloc
	ChannelPush
	ChannelPop
	ChannelHasData
	SchedulerRun

	// Heap/memory operations. Not itemized in the opcode families above
	// because they're a direct consequence of class/list/dict lowering
	//, not a family of their own.
	Alloc // allocate a class instance: header + N field slots
	LoadField // rDst = rObj.fields[index]
	StoreField // rObj.fields[index] = rVal
	LoadVTable // rDst = vtable entry for rObj's class at method-id
	MakeList // rDst = list of the given element registers
	MakeDict // rDst = dict from alternating key/value registers
	MakeTuple // rDst = tuple of the given element registers
	LoadElem // rDst = rContainer[rIndex] (list/dict/tuple)
	StoreElem // rContainer[rIndex] = rVal
	AllocClosure // rDst = function pointer + boxed environment
)

var opcodeNames = map[Opcode]string{
	Mov: "mov",
	LoadConst: "load_const",
	Cast: "cast",

	Add: "add",
	Sub: "sub",
	Mul: "mul",
	Div: "div",
	Mod: "mod",
	Neg: "neg",

	And: "and",
	Or: "or",
	Xor: "xor",

	CmpEq: "cmp_eq",
	CmpNe: "cmp_ne",
	CmpLt: "cmp_lt",
	CmpLe: "cmp_le",
	CmpGt: "cmp_gt",
	CmpGe: "cmp_ge",

	Jump: "jump",
	JumpIf: "jump_if",
	JumpIfFalse: "jump_if_false",
	Return: "return",
	Ret: "ret",

	Call: "call",
	CallBuiltin: "call_builtin",
	CallIndirect: "call_indirect",

	StrConcat: "str_concat",
	StrFormat: "str_format",
	ToString: "to_string",

	Print: "print",

	ConstructOk: "construct_ok",
	ConstructErr: "construct_err",
	IsError: "is_error",
	IsSuccess: "is_success",
	UnwrapValue: "unwrap_value",
	PropagateError: "propagate_error",
	CheckError: "check_error",

	TaskContextAlloc: "task_ctx_alloc",
	TaskContextInit: "task_ctx_init",
	TaskSetField: "task_set_field",
	TaskGetField: "task_get_field",
	ChannelAlloc: "chan_alloc",
	ChannelPush: "chan_push",
	ChannelPop: "chan_pop",
	ChannelHasData: "chan_has_data",
	SchedulerRun: "scheduler_run",

	Alloc: "alloc",
	LoadField: "load_field",
	StoreField: "store_field",
	LoadVTable: "load_vtable",
	MakeList: "make_list",
	MakeDict: "make_dict",
	MakeTuple: "make_tuple",
	LoadElem: "load_elem",
	StoreElem: "store_elem",
	AllocClosure: "alloc_closure",
}

func (op Opcode) String() string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return "unknown"
}

// IsTerminator reports whether op may only appear as a basic block's
// final instruction.
func (op Opcode) IsTerminator() bool {
	switch op {
	case Jump, JumpIf, JumpIfFalse, Return, Ret, PropagateError:
		return true
	}
	return false
}
