package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"google.golang.org/grpc"

	"tycho/api/rpc"
	"tycho/api/ws"
	"tycho/infra/journal"
	"tycho/infra/kafka"
	"tycho/infra/outbox"
	"tycho/jobs/broadcaster"
	"tycho/service"
	"tycho/snapshot"
	"tycho/storage"
)

func main() {
	grpcAddr := flag.String("grpc-addr", ":50051", "gRPC listen address")
	wsAddr := flag.String("ws-addr", ":8080", "websocket listen address")
	journalDir := flag.String("journal-dir", "./data/journal", "command journal directory")
	snapshotDir := flag.String("snapshot-dir", "./data/snapshots", "snapshot directory")
	outboxDir := flag.String("outbox-dir", "./data/outbox", "event outbox directory")
	storePath := flag.String("store", "./data/events.db", "event history database ('' disables)")
	brokers := flag.String("kafka-brokers", "", "comma-separated Kafka brokers ('' disables publication)")
	eventsTopic := flag.String("events-topic", "tycho.events", "durable event topic")
	feedTopic := flag.String("feed-topic", "tycho.trades", "live trade feed topic")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---------------- Journal ----------------

	jnl, err := journal.Open(journal.Config{Dir: *journalDir})
	if err != nil {
		log.Fatalf("journal init failed: %v", err)
	}
	defer jnl.Close()

	// ---------------- Outbox ----------------

	ob, err := outbox.Open(*outboxDir)
	if err != nil {
		log.Fatalf("outbox init failed: %v", err)
	}
	defer ob.Close()

	// ---------------- Feed ----------------

	var feed *kafka.Producer
	var brokerList []string
	if *brokers != "" {
		brokerList = strings.Split(*brokers, ",")
		feed = kafka.NewProducer(brokerList, *feedTopic)
		defer feed.Close()
	}

	// ---------------- Service ----------------

	svc := service.New(service.Config{
		Journal: jnl,
		Outbox:  ob,
		Feed:    feed,
	})

	// ---------------- Restore + replay ----------------

	writer := &snapshot.Writer{Dir: *snapshotDir}
	state, err := snapshot.Load(*snapshotDir)
	if err != nil {
		log.Fatalf("snapshot load failed: %v", err)
	}
	if state != nil {
		svc.Restore(state)
		log.Printf("restored snapshot seq=%d (%s)", state.Seq, state.Created.Format(time.RFC3339))
	}
	if err := svc.ReplayJournal(*journalDir); err != nil {
		log.Fatalf("journal replay failed: %v", err)
	}
	log.Printf("journal replay complete, last seq=%d, live orders=%d", svc.LastSeq(), svc.Orders())

	// ---------------- Event history ----------------

	if *storePath != "" {
		store, err := storage.NewEventStore(*storePath)
		if err != nil {
			log.Fatalf("event store init failed: %v", err)
		}
		defer store.Close()
		svc.Notify(func(events []service.Event) {
			if err := store.SaveBatch(context.Background(), events); err != nil {
				log.Printf("event store write failed: %v", err)
			}
		})
	}

	// ---------------- Background jobs ----------------

	go svc.RunMaintenance(ctx, 2*time.Second, 15, func() error {
		state := svc.Dump()
		if err := writer.Write(state); err != nil {
			return err
		}
		return jnl.TruncateBefore(state.Seq)
	})

	if len(brokerList) > 0 {
		bc, err := broadcaster.New(ob, brokerList, *eventsTopic, 250*time.Millisecond)
		if err != nil {
			log.Fatalf("broadcaster init failed: %v", err)
		}
		defer bc.Close()
		go bc.Run(ctx)
	}

	// ---------------- Websocket feed ----------------

	wsSrv := ws.NewServer(svc)
	mux := http.NewServeMux()
	mux.Handle("/ws", wsSrv)
	go func() {
		if err := http.ListenAndServe(*wsAddr, mux); err != nil {
			log.Fatalf("websocket server exited: %v", err)
		}
	}()

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", *grpcAddr)
	if err != nil {
		log.Fatalf("listen failed: %v", err)
	}

	grpcSrv := grpc.NewServer()
	rpc.NewServer(svc).Register(grpcSrv)

	log.Printf("tycho engine running on %s (ws %s)", *grpcAddr, *wsAddr)

	if err := grpcSrv.Serve(lis); err != nil {
		log.Fatalf("gRPC server exited: %v", err)
	}
}
