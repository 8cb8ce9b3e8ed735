package song

import "fmt"

// A Command is an effect command of a table command column. The ordinals
// match the bytes stored by format versions before 8; CommandB was added to
// the tracker later and sits at the end of the enumeration.
type Command uint8

// Table commands.
const (
	CommandNone Command = iota
	CommandA
	CommandC
	CommandD
	CommandE
	CommandF
	CommandG
	CommandH
	CommandK
	CommandL
	CommandM
	CommandO
	CommandP
	CommandR
	CommandS
	CommandT
	CommandV
	CommandW
	CommandZ
	// CommandB was introduced together with the shifted storage encoding of
	// format version 8.
	CommandB
)

func (cmd Command) String() string {
	names := map[Command]string{
		CommandNone: "-",
		CommandA:    "A",
		CommandB:    "B",
		CommandC:    "C",
		CommandD:    "D",
		CommandE:    "E",
		CommandF:    "F",
		CommandG:    "G",
		CommandH:    "H",
		CommandK:    "K",
		CommandL:    "L",
		CommandM:    "M",
		CommandO:    "O",
		CommandP:    "P",
		CommandR:    "R",
		CommandS:    "S",
		CommandT:    "T",
		CommandV:    "V",
		CommandW:    "W",
		CommandZ:    "Z",
	}
	if name, ok := names[cmd]; ok {
		return name
	}
	return fmt.Sprintf("Command(%d)", uint8(cmd))
}

// decodeCommand translates a stored command byte into a Command for the
// given format version.
//
// Versions >= 8 use a shifted encoding: byte 1 denotes CommandB, and every
// other non-zero byte stores the command ordinal plus one. Older versions
// store the ordinal verbatim and have no representation for CommandB.
func decodeCommand(b uint8, version uint8) Command {
	if version < 8 {
		return Command(b)
	}
	switch {
	case b == 0:
		return CommandNone
	case b == 1:
		return CommandB
	default:
		return Command(b - 1)
	}
}

// encodeCommand translates a Command into its stored byte for the given
// format version. Writing CommandB to a pre-8 image fails, since the byte
// value did not exist in those versions.
func encodeCommand(cmd Command, version uint8) (uint8, error) {
	if version < 8 {
		if cmd == CommandB {
			return 0, FormatError(fmt.Sprintf("song: command B is not representable in format version %d; expected version >= 8", version))
		}
		return uint8(cmd), nil
	}
	switch {
	case cmd == CommandNone:
		return 0, nil
	case cmd == CommandB:
		return 1, nil
	default:
		return uint8(cmd) + 1, nil
	}
}
