// Package cli builds the bftnoded cobra command tree, grounded on the
// teacher's cmd/empower1d/cli.NewCLI (cobra root + subcommands closing
// over the node's in-process state).
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/empower1/bftconsensus/internal/consensus"
	"github.com/empower1/bftconsensus/internal/runtimeclient"
)

// Node is the subset of demo-node state the CLI commands need: the chain
// store and the long-lived proposer factory.
type Node struct {
	Chain   *runtimeclient.Chain
	Factory *consensus.ProposerFactory
	Table   consensus.CandidateTable
}

// NewCLI builds the bftnoded root command.
func NewCLI(node *Node) *cobra.Command {
	root := &cobra.Command{
		Use:   "bftnoded",
		Short: "bftnoded runs a demo BFT block proposer and vote evaluator.",
	}

	root.AddCommand(statusCmd(node))
	root.AddCommand(validatorsCmd(node))
	root.AddCommand(proposeOnceCmd(node))

	return root
}

func statusCmd(node *Node) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the current chain head.",
		Run: func(cmd *cobra.Command, args []string) {
			head := node.Chain.Head()
			fmt.Printf("height %d, timestamp %d, extrinsics %d\n", head.Header.Number, head.Header.Timestamp, len(head.Extrinsics))
		},
	}
}

func validatorsCmd(node *Node) *cobra.Command {
	return &cobra.Command{
		Use:   "validators",
		Short: "List the validator set at the current head.",
		Run: func(cmd *cobra.Command, args []string) {
			head := node.Chain.Head()
			validators, err := node.Chain.Validators(consensus.BlockID{Hash: runtimeclient.BlockHash(head)})
			if err != nil {
				fmt.Printf("error: %v\n", err)
				return
			}
			for i, v := range validators {
				fmt.Printf("%d: %s\n", i, v)
			}
		},
	}
}

func proposeOnceCmd(node *Node) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "propose-once",
		Short: "Run a single round's proposal attempt against the current head and print the result.",
		Run: func(cmd *cobra.Command, args []string) {
			head := node.Chain.Head()
			headHash := runtimeclient.BlockHash(head)

			handle, err := node.Factory.Init(headHash, head.Header.Number, node.Table, consensus.DefaultInclusionThresholds)
			if err != nil {
				fmt.Printf("failed to start session: %v\n", err)
				return
			}
			defer handle.Cancel()

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			block, err := handle.Proposer.Propose(0).Run(ctx)
			if err != nil {
				fmt.Printf("proposal attempt did not complete: %v\n", err)
				return
			}
			fmt.Printf("baked block: height %d, timestamp %d, %d extrinsics\n", block.Header.Number, block.Header.Timestamp, len(block.Extrinsics))
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "how long to wait for the proposal attempt")
	return cmd
}
