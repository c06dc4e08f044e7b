// spdmresponderd wires a dispatcher.Responder to a transport and runs it
// until interrupted. With -listen set it accepts SPDM-over-TCP
// connections (one Context per connection, SPDM being inherently a
// connection-oriented exchange); without it, it drives one scripted
// negotiation over an in-process transport.Loopback pair as a
// self-contained smoke test of the whole stack.
//
// Usage:
//
//	spdmresponderd [options]
//
// Options:
//
//	-config  path to a YAML policy document (internal/config.Config)
//	-listen  TCP address to accept SPDM connections on (default: run the loopback smoke test)
//	-cert    PEM certificate for slot 0 (default: generate an ephemeral identity)
//	-key     PEM EC private key matching -cert
//	-root    PEM root-of-trust certificate (default: -cert, self-signed)
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/pion/logging"

	"github.com/openspdm/responder-core/internal/config"
	"github.com/openspdm/responder-core/internal/provision"
	"github.com/openspdm/responder-core/pkg/crypto"
	"github.com/openspdm/responder-core/pkg/crypto/refimpl"
	"github.com/openspdm/responder-core/pkg/dispatcher"
	"github.com/openspdm/responder-core/pkg/protocol"
	"github.com/openspdm/responder-core/pkg/spdmcontext"
	"github.com/openspdm/responder-core/pkg/transport"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML policy document")
	listenAddr := flag.String("listen", "", "TCP address to accept SPDM connections on (default: run loopback smoke test)")
	certPath := flag.String("cert", "", "PEM certificate for slot 0")
	keyPath := flag.String("key", "", "PEM EC private key matching -cert")
	rootPath := flag.String("root", "", "PEM root-of-trust certificate")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("spdmresponderd: %v", err)
	}

	prov, signer, err := provision.Load(provision.FileConfig{
		CertPath: *certPath,
		KeyPath:  *keyPath,
		RootPath: *rootPath,
	})
	if err != nil {
		log.Fatalf("spdmresponderd: %v", err)
	}

	registry := crypto.NewRegistry()
	if err := refimpl.Register(registry); err != nil {
		log.Fatalf("spdmresponderd: register reference crypto: %v", err)
	}
	if err := registry.RegisterSigner(signer); err != nil {
		log.Fatalf("spdmresponderd: register signer: %v", err)
	}

	loggerFactory := logging.NewDefaultLoggerFactory()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *listenAddr == "" {
		runLoopbackSmokeTest(cfg, prov, registry, loggerFactory)
		return
	}
	if err := runTCPServer(ctx, *listenAddr, cfg, prov, registry, loggerFactory); err != nil {
		log.Fatalf("spdmresponderd: %v", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// buildResponder assembles one connection's Context and Responder from
// the process-wide policy and identity material, bound to devIO.
func buildResponder(cfg *config.Config, prov *spdmcontext.Provisioning, registry *crypto.Registry, loggerFactory logging.LoggerFactory, devIO transport.DeviceIO) (*dispatcher.Responder, error) {
	hasher, err := registry.Hasher(protocol.HashSHA384)
	if err != nil {
		return nil, fmt.Errorf("build responder: %w", err)
	}

	sctx := spdmcontext.New(spdmcontext.Config{
		Hasher:          hasher,
		Registry:        registry,
		Provisioning:    prov,
		DeviceIO:        devIO,
		SessionCapacity: cfg.Session.TableCapacity,
	})

	return dispatcher.New(dispatcher.Config{
		Context:          sctx,
		Logger:           loggerFactory.NewLogger(fmt.Sprintf("spdm-%s", cfg.InstanceID)),
		SenderBufferSize: int(cfg.Transfer.SenderBufferSize),
		Capabilities:     cfg.Capabilities.ToFlags(),
		CTExponent:       cfg.Timing.ST1Exponent,
		DataTransferSize: cfg.Transfer.DataTransferSize,
		MaxSPDMMsgSize:   cfg.Transfer.MaxSPDMMsgSize,
		HeartbeatPeriod:  heartbeatPeriodSeconds(cfg.Timing.HeartbeatPeriod),
		KeySchedule:      refimpl.NewHKDFKeySchedule(),
	}), nil
}

// heartbeatPeriodSeconds converts the policy's time.Duration into the
// single-byte seconds field KEY_EXCHANGE_RSP/PSK_EXCHANGE_RSP carry,
// saturating rather than overflowing for a misconfigured period.
func heartbeatPeriodSeconds(d time.Duration) uint8 {
	seconds := d / time.Second
	if seconds > 255 {
		return 255
	}
	return uint8(seconds)
}

// runTCPServer accepts one SPDM connection at a time per peer and serves
// each on its own Context until the connection closes or ctx is
// cancelled.
func runTCPServer(ctx context.Context, addr string, cfg *config.Config, prov *spdmcontext.Provisioning, registry *crypto.Registry, loggerFactory logging.LoggerFactory) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	defer lis.Close()

	go func() {
		<-ctx.Done()
		lis.Close()
	}()

	log.Printf("spdmresponderd: listening on %s", lis.Addr())
	for {
		conn, err := lis.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("accept: %w", err)
			}
		}
		go serveConn(ctx, conn, cfg, prov, registry, loggerFactory)
	}
}

func serveConn(ctx context.Context, conn net.Conn, cfg *config.Config, prov *spdmcontext.Provisioning, registry *crypto.Registry, loggerFactory logging.LoggerFactory) {
	defer conn.Close()
	devIO := transport.NewStreamIO(conn)

	r, err := buildResponder(cfg, prov, registry, loggerFactory, devIO)
	if err != nil {
		log.Printf("spdmresponderd: %s: %v", conn.RemoteAddr(), err)
		return
	}

	log.Printf("spdmresponderd: connection from %s", conn.RemoteAddr())
	for {
		handled, raw, err := r.ProcessMessage(ctx)
		if err != nil {
			log.Printf("spdmresponderd: %s: %v (raw=%x)", conn.RemoteAddr(), err, raw)
			return
		}
		if !handled {
			return
		}
	}
}

// runLoopbackSmokeTest drives one GET_VERSION round trip over an
// in-process transport.Loopback pair, proving the whole stack — registry,
// provisioning, context, responder, framing — wires together without
// needing a live peer.
func runLoopbackSmokeTest(cfg *config.Config, prov *spdmcontext.Provisioning, registry *crypto.Registry, loggerFactory logging.LoggerFactory) {
	responderSide, peerSide := transport.NewLoopbackPair()
	defer peerSide.Close()

	r, err := buildResponder(cfg, prov, registry, loggerFactory, responderSide)
	if err != nil {
		log.Fatalf("spdmresponderd: %v", err)
	}

	background := context.Background()
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, raw, err := r.ProcessMessage(background); err != nil {
			log.Printf("spdmresponderd: smoke test: %v (raw=%x)", err, raw)
		}
	}()

	req := []byte{0x10, 0x84, 0x00, 0x00} // SPDM 1.0 header, GET_VERSION, no payload
	if err := peerSide.Send(background, append([]byte{0x00}, req...)); err != nil {
		log.Fatalf("spdmresponderd: smoke test send: %v", err)
	}
	resp, err := peerSide.Receive(background)
	if err != nil {
		log.Fatalf("spdmresponderd: smoke test receive: %v", err)
	}
	<-done
	log.Printf("spdmresponderd: smoke test ok, got %d-byte VERSION response", len(resp))
}
