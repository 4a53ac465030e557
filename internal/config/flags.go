// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// addressList implements flag.Value for a comma separated address list.
type addressList []string

func (l *addressList) String() string {
	return strings.Join(*l, ",")
}

func (l *addressList) Set(s string) error {
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

// ParseFlags parses all configuration flags from os.Args.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-grpc-address grpc server address in format [host]:[port]
//	-d database DSN
//	-c/-config json file path with configs
//	-network key derivation network (mainnet, sandbox)
//	-master-key hex encoded master key
//	-addresses comma separated watched addresses
//	-storage-url record store base URL
//	-chain-url chain API base URL
//	-blocks-endpoint block feed websocket URL
//	-account-endpoint account feed websocket URL
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-log-file client log file path
//	-tui run the terminal status monitor
//	-metrics-address client status metrics host:port
func ParseFlags() *StructuredConfig {
	var serverAddress, grpcServerAddress NetAddress
	var addresses addressList
	var databaseDSN string
	var jsonConfigPath string
	var network string
	var masterKey string
	var storageURL, chainURL string
	var blocksEndpoint, accountEndpoint string
	var requestTimeout time.Duration
	var logFile string
	var monitor bool
	var metricsAddress NetAddress

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.Var(&grpcServerAddress, "grpc-address", "Net grpc server address host:port")
	flag.Var(&addresses, "addresses", "Comma separated watched addresses")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&network, "network", "", "Key derivation network (mainnet, sandbox)")
	flag.StringVar(&masterKey, "master-key", "", "Hex encoded master key")
	flag.StringVar(&storageURL, "storage-url", "", "Record store base URL")
	flag.StringVar(&chainURL, "chain-url", "", "Chain API base URL")
	flag.StringVar(&blocksEndpoint, "blocks-endpoint", "", "Block feed websocket URL")
	flag.StringVar(&accountEndpoint, "account-endpoint", "", "Account feed websocket URL")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.StringVar(&logFile, "log-file", "", "Client log file path")
	flag.BoolVar(&monitor, "tui", false, "Run the terminal status monitor")
	flag.Var(&metricsAddress, "metrics-address", "Client status metrics address host:port")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			Network:        network,
			MasterKey:      masterKey,
			Addresses:      addresses,
			LogFile:        logFile,
			Monitor:        monitor,
			MetricsAddress: metricsAddress.String(),
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			GRPCAddress:    grpcServerAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Adapter: Adapter{
			StorageURL:      storageURL,
			ChainURL:        chainURL,
			BlocksEndpoint:  blocksEndpoint,
			AccountEndpoint: accountEndpoint,
			RequestTimeout:  requestTimeout,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
