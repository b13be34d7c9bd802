// esbsh is an interactive console over an in-process loopback link. It is
// handy for poking at the grant/commit protocol by hand: "send" grants and
// commits on endpoint A, "recv" reads and releases on endpoint B.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/esb.go/pkg/esb"
	"github.com/robotalks/esb.go/pkg/esb/driver/loopback"
)

var capacity = 1024

func init() {
	flag.IntVar(&capacity, "cap", capacity, "Per-direction ring capacity in bytes.")
}

func main() {
	flag.Parse()

	link, err := loopback.NewLink(capacity, esb.DefaultAddresses(), esb.DefaultConfig())
	if err != nil {
		log.Fatalln(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go link.Wire.Run(ctx)

	shell := ishell.New()
	shell.Println("esb loopback shell")

	shell.AddCmd(&ishell.Cmd{
		Name: "send",
		Help: "send <pipe> <text> - transmit text on a pipe from endpoint A",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("usage: send <pipe> <text>"))
				return
			}
			pipe, err := strconv.Atoi(c.Args[0])
			if err != nil || pipe < 0 || pipe > 7 {
				c.Err(fmt.Errorf("pipe must be 0-7"))
				return
			}
			body := strings.Join(c.Args[1:], " ")
			h := esb.NewHeader(uint8(pipe), uint8(len(body)), 0, false)
			pkt, err := link.A.GrantPacket(h)
			if err != nil {
				c.Err(err)
				return
			}
			copy(pkt.Body(), body)
			pkt.CommitAll()
			link.A.StartTx()
			c.Printf("sent %d bytes on pipe %d\n", len(body), pipe)
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "recv",
		Help: "recv - read the next packet waiting at endpoint B",
		Func: func(c *ishell.Context) {
			pkt, err := link.B.ReadPacket()
			if err != nil {
				c.Err(err)
				return
			}
			h := pkt.Header()
			c.Printf("pipe=%d rssi=%d len=%d body=%q\n",
				h.Pipe, h.RSSI, h.Length, string(pkt.Body()))
			pkt.Release()
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "stat",
		Help: "stat - show link state",
		Func: func(c *ishell.Context) {
			c.Printf("max payload: %d bytes\n", link.A.MaxPayloadSize())
			c.Printf("A ready: %v\n", link.A.MsgReady())
			c.Printf("B ready: %v\n", link.B.MsgReady())
		},
	})

	shell.Run()
}
