package txscript

import (
	"github.com/bsv-blockchain/go-bt/v2/bscript"

	"github.com/bsv-blockchain/txforge/errors"
)

// ScriptClass is the standard output script template a locking script
// matches, if any.
type ScriptClass int

const (
	NonStandard ScriptClass = iota
	PubKey
	PubKeyHash
	ScriptHash
	Multisig
	NullData
)

var scriptClassNames = map[ScriptClass]string{
	NonStandard: "nonstandard",
	PubKey:      "pubkey",
	PubKeyHash:  "pubkeyhash",
	ScriptHash:  "scripthash",
	Multisig:    "multisig",
	NullData:    "nulldata",
}

func (c ScriptClass) String() string {
	if name, ok := scriptClassNames[c]; ok {
		return name
	}

	return "invalid"
}

// Classification is the result of matching a locking script against the
// standard templates.
type Classification struct {
	Class        ScriptClass
	RequiredSigs int
	PubKeys      [][]byte // pubkey and multisig classes
	Hash         []byte   // pubkeyhash and scripthash classes, 20 bytes
	Data         [][]byte // nulldata pushes
}

type scriptOp struct {
	op   byte
	data []byte
}

func (s scriptOp) isSmallInt() bool {
	return s.op == bscript.Op0 || (s.op >= bscript.Op1 && s.op <= bscript.Op16)
}

func (s scriptOp) smallInt() int {
	if s.op == bscript.Op0 {
		return 0
	}

	return int(s.op-bscript.Op1) + 1
}

// parseOps tokenizes a script into opcodes and their push data. Push
// operations keep their payload in data, everything else has data nil.
func parseOps(b []byte) ([]scriptOp, error) {
	var ops []scriptOp

	for i := 0; i < len(b); {
		op := b[i]
		i++

		var size int

		switch {
		case op <= bscript.OpDATA75 && op > bscript.Op0:
			size = int(op)
		case op == bscript.OpPUSHDATA1:
			if i >= len(b) {
				return nil, errors.NewInvalidFormatError("truncated OP_PUSHDATA1 at offset %d", i)
			}

			size = int(b[i])
			i++
		case op == bscript.OpPUSHDATA2:
			if i+2 > len(b) {
				return nil, errors.NewInvalidFormatError("truncated OP_PUSHDATA2 at offset %d", i)
			}

			size = int(b[i]) | int(b[i+1])<<8
			i += 2
		case op == bscript.OpPUSHDATA4:
			if i+4 > len(b) {
				return nil, errors.NewInvalidFormatError("truncated OP_PUSHDATA4 at offset %d", i)
			}

			size = int(b[i]) | int(b[i+1])<<8 | int(b[i+2])<<16 | int(b[i+3])<<24
			i += 4
		default:
			ops = append(ops, scriptOp{op: op})
			continue
		}

		if i+size > len(b) {
			return nil, errors.NewInvalidFormatError("push of %d bytes overruns script at offset %d", size, i)
		}

		ops = append(ops, scriptOp{op: op, data: b[i : i+size]})
		i += size
	}

	return ops, nil
}

func isPubKeyLen(n int) bool {
	return n == 33 || n == 65
}

// Classify matches a locking script against the standard templates and
// returns what it found. Unparseable scripts classify as NonStandard
// rather than erroring, matching node behaviour.
func Classify(script *bscript.Script) *Classification {
	b := []byte(*script)

	// pay-to-script-hash is matched on the raw byte pattern
	if len(b) == 23 && b[0] == bscript.OpHASH160 && b[1] == bscript.OpDATA20 && b[22] == bscript.OpEQUAL {
		return &Classification{Class: ScriptHash, RequiredSigs: 1, Hash: b[2:22]}
	}

	ops, err := parseOps(b)
	if err != nil {
		return &Classification{Class: NonStandard}
	}

	switch {
	case isPubKeyHash(ops):
		return &Classification{Class: PubKeyHash, RequiredSigs: 1, Hash: ops[2].data}

	case isPubKey(ops):
		return &Classification{Class: PubKey, RequiredSigs: 1, PubKeys: [][]byte{ops[0].data}}

	case isNullData(ops):
		var data [][]byte
		for _, op := range ops[1:] {
			data = append(data, op.data)
		}

		return &Classification{Class: NullData, Data: data}
	}

	if required, pubKeys, ok := matchMultisig(ops); ok {
		return &Classification{Class: Multisig, RequiredSigs: required, PubKeys: pubKeys}
	}

	return &Classification{Class: NonStandard}
}

// PushedData returns the data items a push-only script places on the stack,
// in order. ok is false when the script contains any non-push opcode or does
// not parse.
func PushedData(script *bscript.Script) ([][]byte, bool) {
	ops, err := parseOps([]byte(*script))
	if err != nil {
		return nil, false
	}

	data := make([][]byte, 0, len(ops))

	for _, op := range ops {
		switch {
		case op.data != nil:
			data = append(data, op.data)
		case op.op == bscript.Op0:
			data = append(data, []byte{})
		case op.isSmallInt():
			data = append(data, []byte{byte(op.smallInt())})
		case op.op == bscript.Op1NEGATE:
			data = append(data, []byte{0x81})
		default:
			return nil, false
		}
	}

	return data, true
}

func isPubKeyHash(ops []scriptOp) bool {
	return len(ops) == 5 &&
		ops[0].op == bscript.OpDUP &&
		ops[1].op == bscript.OpHASH160 &&
		len(ops[2].data) == 20 &&
		ops[3].op == bscript.OpEQUALVERIFY &&
		ops[4].op == bscript.OpCHECKSIG
}

func isPubKey(ops []scriptOp) bool {
	return len(ops) == 2 &&
		isPubKeyLen(len(ops[0].data)) &&
		ops[1].op == bscript.OpCHECKSIG
}

func isNullData(ops []scriptOp) bool {
	if len(ops) == 0 || ops[0].op != bscript.OpRETURN {
		return false
	}

	for _, op := range ops[1:] {
		if op.data == nil && !op.isSmallInt() && op.op != bscript.Op1NEGATE {
			return false
		}
	}

	return true
}

func matchMultisig(ops []scriptOp) (int, [][]byte, bool) {
	if len(ops) < 4 || ops[len(ops)-1].op != bscript.OpCHECKMULTISIG {
		return 0, nil, false
	}

	mOp := ops[0]
	nOp := ops[len(ops)-2]

	if !mOp.isSmallInt() || !nOp.isSmallInt() {
		return 0, nil, false
	}

	required := mOp.smallInt()
	total := nOp.smallInt()

	keyOps := ops[1 : len(ops)-2]
	if len(keyOps) != total || required < 1 || required > total {
		return 0, nil, false
	}

	pubKeys := make([][]byte, 0, total)

	for _, op := range keyOps {
		if !isPubKeyLen(len(op.data)) {
			return 0, nil, false
		}

		pubKeys = append(pubKeys, op.data)
	}

	return required, pubKeys, true
}
