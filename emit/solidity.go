// Package emit renders lowered Poseidon2 programs as source code for
// word-oriented execution targets.
package emit

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"text/template"

	"github.com/vocdoni/poseidon2/program"
)

// Config tunes the generated Solidity library.
type Config struct {
	LibraryName   string
	PragmaVersion string
}

// DefaultConfig returns the configuration used by the CLI.
func DefaultConfig() Config {
	return Config{
		LibraryName:   "Poseidon2",
		PragmaVersion: "^0.8.20",
	}
}

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func (c Config) validate() error {
	if !identifier.MatchString(c.LibraryName) {
		return fmt.Errorf("emit: invalid library name %q", c.LibraryName)
	}
	if strings.TrimSpace(c.PragmaVersion) == "" {
		return errors.New("emit: empty pragma version")
	}
	return nil
}

// block is a run of instructions sharing a round tag.
type block struct {
	Header string
	Code   []program.Instruction
}

// Solidity writes a library with a single compress function whose body is
// one inline assembly statement per program instruction.
func Solidity(w io.Writer, p *program.Program, cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if err := program.Verify(p); err != nil {
		return err
	}

	helpers := template.FuncMap{
		"operand": func(o program.Operand) string {
			if o.Kind == program.KindConstant {
				return p.Constants[o.Index].Hex()
			}
			return o.String()
		},
		"regs": func() string {
			names := make([]string, program.NumRegs)
			for r := range names {
				names[r] = program.Reg(r).String()
			}
			return strings.Join(names, ", ")
		},
	}
	tmpl, err := template.New("solidity").Funcs(helpers).Parse(solidityTemplate)
	if err != nil {
		return err
	}

	data := struct {
		Cfg        Config
		Mode       program.Mode
		Modulus    string
		Blocks     []block
		Output     program.Reg
		Reductions int
	}{
		Cfg:        cfg,
		Mode:       p.Mode,
		Modulus:    program.Modulus.Hex(),
		Blocks:     blocks(p.Code),
		Output:     p.Output,
		Reductions: p.Reductions(),
	}
	return tmpl.Execute(w, data)
}

func blocks(code []program.Instruction) []block {
	var (
		out       []block
		seenRound bool
	)
	for i, ins := range code {
		if i == 0 || ins.Round != code[i-1].Round {
			var header string
			switch {
			case ins.Round >= 0:
				header = fmt.Sprintf("round %d", ins.Round)
				seenRound = true
			case seenRound:
				header = "feed-forward"
			default:
				header = "input reduction, initial linear layer"
			}
			out = append(out, block{Header: header})
		}
		out[len(out)-1].Code = append(out[len(out)-1].Code, ins)
	}
	return out
}

const solidityTemplate = `// SPDX-License-Identifier: MIT
// Code generated by poseidon2 emit. DO NOT EDIT.

pragma solidity {{ .Cfg.PragmaVersion }};

/// @title Poseidon2 t=2 compression over the BLS12-381 scalar field.
/// @notice rF=8, rP=56, d=5. Inputs are reduced modulo the field order.
/// @dev {{ .Mode }} variant, {{ .Reductions }} modular reductions.
library {{ .Cfg.LibraryName }} {
    function compress(uint256 left, uint256 right_in) internal pure returns (uint256 out) {
        assembly {
            let p := {{ .Modulus }}
            let {{ regs }}
{{- range .Blocks }}

            // {{ .Header }}
{{- range .Code }}
{{- if eq .Op.Arity 1 }}
            {{ .Dst }} := {{ .Op }}({{ operand (index .Args 0) }}, p)
{{- else if eq .Op.String "add" }}
            {{ .Dst }} := add({{ operand (index .Args 0) }}, {{ operand (index .Args 1) }})
{{- else }}
            {{ .Dst }} := {{ .Op }}({{ operand (index .Args 0) }}, {{ operand (index .Args 1) }}, p)
{{- end }}
{{- end }}
{{- end }}

            out := {{ .Output }}
        }
    }
}
`
