// esblink runs two ESB endpoints over an in-process loopback wire: endpoint
// A transmits a counter packet periodically, endpoint B publishes everything
// it receives to MQTT under <prefix>/pipe/<n>.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denisbrodbeck/machineid"

	"github.com/robotalks/esb.go/pkg/esb"
	"github.com/robotalks/esb.go/pkg/esb/driver/loopback"
	"github.com/robotalks/esb.go/pkg/link/mqtt"
)

var (
	mqttURL  = "mqtt://localhost:1883/esb/"
	interval = time.Second
	pipe     = 0
	capacity = 1024
)

func init() {
	if val := os.Getenv("ESB_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.DurationVar(&interval, "interval", interval, "Transmit interval.")
	flag.IntVar(&pipe, "pipe", pipe, "Pipe (0-7) to transmit on.")
	flag.IntVar(&capacity, "cap", capacity, "Per-direction ring capacity in bytes.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	link, err := loopback.NewLink(capacity, esb.DefaultAddresses(), esb.DefaultConfig())
	if err != nil {
		log.Fatalln(err)
	}

	clientID := "esblink"
	if id, err := machineid.ID(); err == nil {
		clientID = "esblink-" + id[:8]
	}
	q, err := mqtt.NewQueueFromURL(mqttURL + "?client-id=" + clientID)
	if err != nil {
		log.Fatalln(err)
	}
	if err = q.Connect(); err != nil {
		log.Fatalln(err)
	}
	defer q.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := link.Wire.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatalln(err)
		}
	}()
	go transmit(ctx, link.A)

	for {
		pkt, err := link.B.WaitReadPacket(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Fatalln(err)
		}
		h := pkt.Header()
		topic := fmt.Sprintf("pipe/%d", h.Pipe)
		if err := q.Pub(topic, append([]byte(nil), pkt.Body()...)); err != nil {
			log.Printf("publish: %v", err)
		}
		log.Printf("rx pipe=%d rssi=%d len=%d", h.Pipe, h.RSSI, h.Length)
		pkt.Release()
	}
}

func transmit(ctx context.Context, app *esb.App) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var seq uint32
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		body := fmt.Sprintf("seq=%d", seq)
		seq++
		h := esb.NewHeader(uint8(pipe), uint8(len(body)), uint8(seq)&0b11, false)
		pkt, err := app.WaitGrantPacket(ctx, h)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Fatalln(err)
		}
		copy(pkt.Body(), body)
		pkt.CommitAll()
		app.StartTx()
	}
}
