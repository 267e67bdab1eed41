package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/colorfulnotion/avm/avmerrors"
	"github.com/colorfulnotion/avm/common"
	"github.com/colorfulnotion/avm/log"
	"github.com/colorfulnotion/avm/simulator"
	"github.com/colorfulnotion/avm/storage"
	"github.com/colorfulnotion/avm/types"
	"github.com/spf13/cobra"
)

type runFlags struct {
	bytecode  string
	calldata  string
	address   string
	sender    string
	l2Gas     uint32
	daGas     uint32
	static    bool
	dbPath    string
	logLevel  string
	debug     string
	otlp      string
	trace     bool
	maxDepth  int
	showState bool
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Deploy a bytecode and execute it as a single enqueued call",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &f)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.bytecode, "bytecode", "", "Bytecode as hex or a file path")
	flags.StringVar(&f.calldata, "calldata", "", "Comma separated field values passed as calldata")
	flags.StringVar(&f.address, "address", "0x1", "Contract address to deploy the bytecode at")
	flags.StringVar(&f.sender, "sender", "0x0", "Sender address")
	flags.Uint32Var(&f.l2Gas, "l2gas", 1_000_000, "L2 gas limit")
	flags.Uint32Var(&f.daGas, "dagas", 1_000_000, "DA gas limit")
	flags.BoolVar(&f.static, "static", false, "Execute as a static call")
	flags.StringVar(&f.dbPath, "db", "", "LevelDB directory for the world state (in-memory when empty)")
	flags.StringVar(&f.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&f.debug, "debug", "", "Modules to enable for trace/debug output, comma separated or \"all\"")
	flags.StringVar(&f.otlp, "otlp", "", "OTLP/HTTP collector endpoint (host:port)")
	flags.BoolVar(&f.trace, "trace", false, "Log every executed instruction")
	flags.IntVar(&f.maxDepth, "max-depth", 1024, "Maximum nested call depth")
	flags.BoolVar(&f.showState, "side-effects", false, "Print the side-effect trace as JSON")
	_ = cmd.MarkFlagRequired("bytecode")
	return cmd
}

func run(cmd *cobra.Command, f *runFlags) error {
	if err := log.InitLogger(f.logLevel); err != nil {
		return err
	}
	if f.debug != "" {
		log.EnableModules(f.debug)
	}
	ctx := context.Background()
	if f.otlp != "" {
		stop, err := startTracing(ctx, f.otlp)
		if err != nil {
			return err
		}
		defer stop()
	}

	code, err := common.LoadBytecode(f.bytecode)
	if err != nil {
		return err
	}
	calldata, err := common.ParseFieldList(f.calldata)
	if err != nil {
		return fmt.Errorf("calldata: %w", err)
	}

	ps, err := storage.NewPersistenceStore(f.dbPath)
	if err != nil {
		return err
	}
	defer ps.Close()

	contracts := storage.NewContractStore(ps)
	address := types.HexToAddress(f.address)
	if _, err := contracts.AddContract(&types.ContractInstance{Address: address}, code); err != nil {
		return err
	}

	cfg := simulator.DefaultConfig()
	cfg.AVM.MaxCallDepth = f.maxDepth
	cfg.AVM.Trace = f.trace
	sim, err := simulator.New(cfg, storage.NewPersistentTrees(ps), contracts)
	if err != nil {
		return err
	}

	tx := &simulator.Tx{
		EnqueuedCalls: []simulator.EnqueuedCall{{
			Address:  address,
			Sender:   types.HexToAddress(f.sender),
			Calldata: calldata,
			IsStatic: f.static,
		}},
		GasLimit: types.NewGas(f.l2Gas, f.daGas),
		Globals:  types.DefaultGlobalVariables(),
	}
	res, simErr := sim.Simulate(ctx, tx)
	if res == nil {
		return simErr
	}

	out := cmd.OutOrStdout()
	status := "success"
	if res.Reverted {
		status = "reverted"
	}
	fmt.Fprintf(out, "status:   %s\n", status)
	if res.RevertReason != nil {
		fmt.Fprintf(out, "reason:   %s %s (%v)\n", avmerrors.GetErrorCode(res.RevertReason),
			avmerrors.GetErrorName(res.RevertReason), res.RevertReason)
	}
	fmt.Fprintf(out, "gas used: %v\n", res.GasUsed)
	if len(res.CallResults) > 0 {
		fmt.Fprintf(out, "output:   [")
		for i, w := range res.CallResults[0].Output {
			if i > 0 {
				fmt.Fprint(out, ", ")
			}
			fmt.Fprint(out, w.String())
		}
		fmt.Fprintln(out, "]")
	}
	fmt.Fprintln(out, res.CallTrace.String())
	if f.showState {
		data, err := json.MarshalIndent(res.SideEffects, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	}
	return simErr
}
