package simulator

import (
	"context"
	"errors"
	"fmt"

	"github.com/colorfulnotion/avm/avm"
	"github.com/colorfulnotion/avm/avmerrors"
	"github.com/colorfulnotion/avm/log"
	"github.com/colorfulnotion/avm/statedb"
	"github.com/colorfulnotion/avm/types"
	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/colorfulnotion/avm/simulator"

var ErrEmptyTransaction = errors.New("transaction has no enqueued calls")

type Config struct {
	AVM            avm.Config
	Limits         types.SideEffectLimits
	TracerProvider trace.TracerProvider
}

func DefaultConfig() Config {
	return Config{
		AVM:    avm.DefaultConfig(),
		Limits: types.DefaultSideEffectLimits(),
	}
}

// EnqueuedCall is one public call of a transaction.
type EnqueuedCall struct {
	Address  types.Address `json:"address"`
	Sender   types.Address `json:"sender"`
	Calldata []uint256.Int `json:"calldata"`
	IsStatic bool          `json:"isStatic"`
}

type Tx struct {
	EnqueuedCalls  []EnqueuedCall        `json:"enqueuedCalls"`
	FirstNullifier uint256.Int           `json:"firstNullifier"`
	GasLimit       types.Gas             `json:"gasLimit"`
	Globals        types.GlobalVariables `json:"globals"`
	TransactionFee uint256.Int           `json:"transactionFee"`
}

type TxResult struct {
	CallResults  []*avm.ContractCallResults
	GasUsed      types.Gas
	Reverted     bool
	RevertReason error
	SideEffects  statedb.SideEffects
	CallTrace    *types.CallTraceNode
}

// flusher is implemented by trees that buffer writes, such as storage.Trees.
type flusher interface {
	Flush() error
}

// Simulator runs transactions of enqueued public calls against one world state.
type Simulator struct {
	cfg    Config
	trees  statedb.TreeStore
	state  *statedb.StateManager
	vm     *avm.Interpreter
	tracer trace.Tracer
}

func New(cfg Config, trees statedb.TreeStore, contracts statedb.ContractSource) (*Simulator, error) {
	state := statedb.NewStateManager(trees, contracts, cfg.Limits)
	vm, err := avm.NewInterpreter(cfg.AVM, state)
	if err != nil {
		return nil, err
	}
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Simulator{
		cfg:    cfg,
		trees:  trees,
		state:  state,
		vm:     vm,
		tracer: tp.Tracer(tracerName),
	}, nil
}

// Simulate runs every enqueued call of tx in order with the transaction's shared gas.
// A REVERT of any enqueued call rolls back the whole transaction and returns no error.
// An exceptional halt does the same and also returns the halt reason.
// World-state failures abort with an error and a nil result.
func (s *Simulator) Simulate(ctx context.Context, tx *Tx) (*TxResult, error) {
	if len(tx.EnqueuedCalls) == 0 {
		return nil, ErrEmptyTransaction
	}
	ctx, span := s.tracer.Start(ctx, "Simulate", trace.WithAttributes(
		attribute.Int("calls", len(tx.EnqueuedCalls)),
		attribute.Int64("gas.l2.limit", int64(tx.GasLimit.L2)),
		attribute.Int64("gas.da.limit", int64(tx.GasLimit.DA)),
	))
	defer span.End()

	s.state.BeginTransaction(&tx.FirstNullifier)
	s.state.Checkpoint()

	result := &TxResult{CallTrace: &types.CallTraceNode{GasAllotted: tx.GasLimit}}
	gasLeft := tx.GasLimit
	for i := range tx.EnqueuedCalls {
		call := &tx.EnqueuedCalls[i]
		res, err := s.runCall(ctx, i, call, tx, gasLeft)
		if res == nil {
			s.state.Revert()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if node := s.vm.CallTrace(); node != nil {
			result.CallTrace.AddChild(node)
		}
		result.CallResults = append(result.CallResults, res)
		result.GasUsed = result.GasUsed.Add(res.GasUsed)
		gasLeft = res.GasLeft

		if res.Reverted {
			s.state.Revert()
			result.Reverted = true
			result.RevertReason = res.RevertReason
			result.CallTrace.Reverted = true
			result.CallTrace.GasUsed = result.GasUsed
			span.SetAttributes(attribute.Bool("reverted", true), attribute.Int("revertedCall", i))
			log.Info(log.Simulator, "transaction reverted", "call", i, "address", call.Address, "gasUsed", result.GasUsed, "reason", res.RevertReason)
			if err != nil {
				span.SetStatus(codes.Error, err.Error())
				return result, fmt.Errorf("enqueued call %d: %w", i, err)
			}
			return result, nil
		}
	}

	result.SideEffects = s.state.SideEffects()
	s.state.Commit()
	if f, ok := s.trees.(flusher); ok {
		if err := f.Flush(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("%w: flush: %v", avmerrors.ErrWorldStateIO, err)
		}
	}
	result.CallTrace.GasUsed = result.GasUsed
	span.SetAttributes(
		attribute.Int64("gas.l2.used", int64(result.GasUsed.L2)),
		attribute.Int64("gas.da.used", int64(result.GasUsed.DA)),
		attribute.Int("sideEffects", result.SideEffects.Len()),
	)
	log.Info(log.Simulator, "transaction simulated", "calls", len(result.CallResults), "gasUsed", result.GasUsed,
		"sideEffects", result.SideEffects.Len())
	return result, nil
}

// runCall executes one enqueued call as a top-level context. A nil result means execution was aborted.
func (s *Simulator) runCall(ctx context.Context, i int, call *EnqueuedCall, tx *Tx, gas types.Gas) (*avm.ContractCallResults, error) {
	_, span := s.tracer.Start(ctx, fmt.Sprintf("EnqueuedCall[%d]", i), trace.WithAttributes(
		attribute.String("address", call.Address.Hex()),
		attribute.Bool("static", call.IsStatic),
	))
	defer span.End()

	env := &avm.Environment{
		Address:        call.Address,
		Sender:         call.Sender,
		TransactionFee: tx.TransactionFee,
		Globals:        tx.Globals,
		IsStaticCall:   call.IsStatic,
		Calldata:       avm.FieldCalldata(call.Calldata),
	}
	res, err := s.vm.Execute(env, gas)
	if res == nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool("reverted", res.Reverted),
		attribute.Int64("gas.l2.used", int64(res.GasUsed.L2)),
		attribute.Int64("gas.da.used", int64(res.GasUsed.DA)),
		attribute.Int("output", len(res.Output)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, avmerrors.GetErrorName(err))
	}
	log.Debug(log.Simulator, "enqueued call", "index", i, "address", call.Address, "reverted", res.Reverted,
		"gasUsed", res.GasUsed)
	return res, err
}

// State exposes the adapter, mainly for inspection after a simulation.
func (s *Simulator) State() *statedb.StateManager {
	return s.state
}
