package cmd

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ftl/flexsdr/client"
)

var rootFlags = struct {
	configFile *string
	program    *string
	station    *string
	verbose    *bool
}{}

var rootCmd = &cobra.Command{
	Use:   "flexsdr",
	Short: "A simple client for FlexRadio network radios.",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootFlags.configFile = rootCmd.PersistentFlags().String("config", "", "read connection settings from this YAML file")
	rootFlags.program = rootCmd.PersistentFlags().String("program", "flexsdr", "the program name to register with the radio")
	rootFlags.station = rootCmd.PersistentFlags().String("station", "", "the station name to register with the radio")
	rootFlags.verbose = rootCmd.PersistentFlags().Bool("verbose", false, "ask the radio to echo each command in its reply")
}

type config struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Program string `yaml:"program"`
	Station string `yaml:"station"`
	Verbose bool   `yaml:"verbose"`
}

func loadConfig(filename string) (config, error) {
	var result config
	if filename == "" {
		return result, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return config{}, err
	}
	err = yaml.Unmarshal(data, &result)
	if err != nil {
		return config{}, fmt.Errorf("cannot parse config file %s: %w", filename, err)
	}
	return result, nil
}

func runWithClient(f func(context.Context, *client.Client, *cobra.Command, []string)) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(*rootFlags.configFile)
		if err != nil {
			log.Fatalf("cannot load config file: %v", err)
		}

		hostArg := cfg.Host
		if cfg.Host != "" && cfg.Port != 0 {
			hostArg = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		}
		if len(args) > 0 {
			hostArg = args[0]
		}

		host, err := parseHostArg(hostArg)
		if err != nil {
			log.Fatalf("invalid host address: %v", err)
		}
		if host.Port == 0 {
			host.Port = client.DefaultPort
			log.Print("using the default port")
		}

		options := client.Options{
			Program: *rootFlags.program,
			Station: *rootFlags.station,
			Verbose: *rootFlags.verbose || cfg.Verbose,
		}
		if cfg.Program != "" && !rootCmd.PersistentFlags().Changed("program") {
			options.Program = cfg.Program
		}
		if options.Station == "" {
			options.Station = cfg.Station
		}

		ctx, cancel := context.WithCancel(context.Background())
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
		go handleCancelation(signals, cancel)

		c, err := client.Open(host, options)
		if err != nil {
			log.Fatalf("cannot connect to %s: %v", host.String(), err)
		}
		defer c.Disconnect()
		c.WhenDisconnected(cancel)

		f(ctx, c, cmd, args)
	}
}

func handleCancelation(signals <-chan os.Signal, cancel context.CancelFunc) {
	count := 0
	for range signals {
		count++
		if count == 1 {
			cancel()
		} else {
			log.Fatal("hard shutdown")
		}
	}
}

func parseHostArg(arg string) (*net.TCPAddr, error) {
	host, port := splitHostPort(arg)
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = strconv.Itoa(client.DefaultPort)
	}

	return net.ResolveTCPAddr("tcp", fmt.Sprintf("%s:%s", host, port))
}

func splitHostPort(hostport string) (host, port string) {
	host = hostport

	colon := strings.LastIndexByte(host, ':')
	if colon != -1 && validOptionalPort(host[colon:]) {
		host, port = host[:colon], host[colon+1:]
	}

	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = host[1 : len(host)-1]
	}

	return
}

func validOptionalPort(port string) bool {
	if port == "" {
		return true
	}
	if port[0] != ':' {
		return false
	}
	for _, b := range port[1:] {
		if b < '0' || b > '9' {
			return false
		}
	}
	return true
}
