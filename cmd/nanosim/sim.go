package main

import (
	goflag "flag"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/min1324/nanok/kernel"
	"github.com/min1324/nanok/stack"
)

const DefaultItems = 8
const DefaultDepth = 32

func NewSimCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nanosim",
		Short: "Drive the nanok hand-off stack through its producer/consumer scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd)
		},
	}

	myFs := pflag.NewFlagSet("nanosim", pflag.ExitOnError)
	myFs.Int("items", DefaultItems, "items each scenario pushes")
	myFs.Int("depth", DefaultDepth, "backing buffer capacity in words")
	cmd.Flags().AddFlagSet(myFs)

	logFs := goflag.NewFlagSet("logging", goflag.PanicOnError)
	klog.InitFlags(logFs)
	cmd.Flags().AddGoFlagSet(logFs)

	return cmd
}

func Run(cmd *cobra.Command) error {
	items, err := cmd.Flags().GetInt("items")
	if err != nil {
		return err
	}
	depth, err := cmd.Flags().GetInt("depth")
	if err != nil {
		return err
	}
	if items > depth {
		return fmt.Errorf("items (%d) exceed buffer depth (%d): push is unchecked and would overflow", items, depth)
	}

	runLIFO(items, depth)
	runHandoff(items, depth)
	runPoll(items, depth)
	return nil
}

// runLIFO exercises the buffered path: no waiter, strict reverse-push order.
func runLIFO(items, depth int) {
	k := kernel.New()
	s := stack.New(k, make([]kernel.Word, depth))

	klog.InfoS("lifo scenario", "items", items)
	for i := 1; i <= items; i++ {
		s.TaskPush(kernel.Word(i))
		klog.V(2).InfoS("pushed", "value", i, "size", s.Size())
	}
	for {
		v, ok := s.TaskPop()
		if !ok {
			break
		}
		klog.V(2).InfoS("popped", "value", v, "size", s.Size())
	}
	klog.InfoS("lifo scenario done", "remaining", s.Size())
}

// runHandoff exercises the waiter path: a fiber pends on the stack and the
// task pushes, handing each word straight to the fiber.
func runHandoff(items, depth int) {
	const stop = ^kernel.Word(0)
	k := kernel.New()
	s := stack.New(k, make([]kernel.Word, depth))

	klog.InfoS("handoff scenario", "items", items)
	received := 0
	k.Start(func() {
		for {
			v := s.PopWait()
			if v == stop {
				return
			}
			received++
			klog.V(2).InfoS("fiber received", "value", v)
		}
	})
	for i := 1; i <= items; i++ {
		s.TaskPush(kernel.Word(i))
	}
	s.TaskPush(stop)
	klog.InfoS("handoff scenario done", "received", received, "buffered", s.Size())
}

// runPoll exercises the task polling path: interrupt handlers push while
// the task waits in the masked idle loop.
func runPoll(items, depth int) {
	k := kernel.New()
	s := stack.New(k, make([]kernel.Word, depth))

	klog.InfoS("poll scenario", "items", items)
	go func() {
		for i := 1; i <= items; i++ {
			v := kernel.Word(i)
			k.Interrupt(func() {
				s.ISRPush(v)
			})
		}
	}()
	for i := 0; i < items; i++ {
		v := s.TaskPopWait()
		klog.V(2).InfoS("task received", "value", v)
	}
	klog.InfoS("poll scenario done", "buffered", s.Size())
}
