package emulator

import (
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"math"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/talos/cpu"
)

// MEMORY_SIZE_MAX is the largest configurable memory.
const MEMORY_SIZE_MAX = 1 << 24

// Config is the emulator configuration.
type Config struct {
	MemorySize   int               // Bytes of flat memory.
	MaxLines     int               // Maximum source lines per build input.
	MaxSteps     int               // Maximum instructions per run; 0 is unlimited.
	MemoryPolicy cpu.Policy        // Out of range memory access policy.
	TrapPolicy   cpu.Policy        // ALU trap policy.
	Predefine    map[string]string // Host supplied assembler equates.
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MemorySize:   cpu.MEMORY_SIZE,
		MaxLines:     cpu.PROGRAM_SIZE,
		MemoryPolicy: cpu.POLICY_IGNORE,
		TrapPolicy:   cpu.POLICY_IGNORE,
		Predefine:    map[string]string{},
	}
}

// configPredeclared are the names visible to configuration scripts.
var configPredeclared = starlark.StringDict{
	"MEMORY_SIZE":   starlark.MakeInt(cpu.MEMORY_SIZE),
	"PROGRAM_SIZE":  starlark.MakeInt(cpu.PROGRAM_SIZE),
	"POLICY_IGNORE": starlark.String(cpu.POLICY_IGNORE.String()),
	"POLICY_FAULT":  starlark.String(cpu.POLICY_FAULT.String()),
}

// configInt reads an integer global in the range [least, most].
func configInt(globals starlark.StringDict, name string, least, most int64, value *int) (err error) {
	st_value, ok := globals[name]
	if !ok {
		return
	}

	st_int, ok := st_value.(starlark.Int)
	if !ok {
		err = &ErrConfigValue{Name: name, Value: st_value.String()}
		return
	}

	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < least || st_int64 > most {
		err = &ErrConfigValue{Name: name, Value: st_value.String()}
		return
	}

	*value = int(st_int64)
	return
}

// configPolicy reads a policy name global.
func configPolicy(globals starlark.StringDict, name string, value *cpu.Policy) (err error) {
	st_value, ok := globals[name]
	if !ok {
		return
	}

	st_str, ok := st_value.(starlark.String)
	if !ok {
		err = &ErrConfigValue{Name: name, Value: st_value.String()}
		return
	}

	policy, ok := cpu.ParsePolicy(string(st_str))
	if !ok {
		err = &ErrConfigValue{Name: name, Value: st_value.String()}
		return
	}

	*value = policy
	return
}

// configPredefine reads the dict of assembler equates.
func configPredefine(globals starlark.StringDict, name string, predefine map[string]string) (err error) {
	st_value, ok := globals[name]
	if !ok {
		return
	}

	dict, ok := st_value.(*starlark.Dict)
	if !ok {
		err = &ErrConfigValue{Name: name, Value: st_value.String()}
		return
	}

	for _, item := range dict.Items() {
		key, ok := item[0].(starlark.String)
		if !ok {
			err = &ErrConfigValue{Name: name, Value: item[0].String()}
			return
		}
		switch value := item[1].(type) {
		case starlark.String:
			predefine[string(key)] = string(value)
		case starlark.Int:
			predefine[string(key)] = value.String()
		default:
			err = &ErrConfigValue{Name: fmt.Sprintf("%v[%v]", name, string(key)), Value: value.String()}
			return
		}
	}

	return
}

// LoadConfig evaluates a Starlark configuration script, starting from
// DefaultConfig. Recognized globals are 'memory_size', 'max_lines',
// 'max_steps', 'memory_policy', 'trap_policy' and 'predefine'.
func LoadConfig(name string, src io.Reader) (config Config, err error) {
	config = DefaultConfig()

	thread := &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			log.Printf("config: %v: %v", name, msg)
		},
	}
	opts := syntax.FileOptions{}

	globals, err := starlark.ExecFileOptions(&opts, thread, name, src, configPredeclared)
	if err != nil {
		err = errors.Join(ErrConfig, err)
		return
	}

	predefine := map[string]string{}
	err = errors.Join(
		configInt(globals, "memory_size", cpu.STACK_SLOT, MEMORY_SIZE_MAX, &config.MemorySize),
		configInt(globals, "max_lines", 1, math.MaxInt32, &config.MaxLines),
		configInt(globals, "max_steps", 0, math.MaxInt64, &config.MaxSteps),
		configPolicy(globals, "memory_policy", &config.MemoryPolicy),
		configPolicy(globals, "trap_policy", &config.TrapPolicy),
		configPredefine(globals, "predefine", predefine),
	)
	if err != nil {
		config = DefaultConfig()
		return
	}

	maps.Copy(config.Predefine, predefine)

	return
}
