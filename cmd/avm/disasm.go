package main

import (
	"fmt"

	"github.com/colorfulnotion/avm/avm"
	"github.com/colorfulnotion/avm/common"
	"github.com/spf13/cobra"
)

func newDisasmCmd() *cobra.Command {
	var bytecode string
	cmd := &cobra.Command{
		Use:   "disasm",
		Short: "Print the decoded instructions of a bytecode",
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := common.LoadBytecode(bytecode)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			instrs, err := avm.Disassemble(code)
			for _, instr := range instrs {
				fmt.Fprintf(out, "%6d: %s\n", instr.PC, instr.String())
			}
			if err != nil {
				return fmt.Errorf("decode stopped after %d instructions: %w", len(instrs), err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&bytecode, "bytecode", "", "Bytecode as hex or a file path")
	_ = cmd.MarkFlagRequired("bytecode")
	return cmd
}
