package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/alessio/shellescape"
	"github.com/andrewchambers/urlsign/ekey"
	"github.com/andrewchambers/urlsign/signer"
	"github.com/gobwas/glob"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	_ "embed"
)

type ConfigDuration struct {
	time.Duration
}

func (d *ConfigDuration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

type URLSignConfig struct {
	Endpoint         string         `toml:"endpoint"`
	PublicKey        string         `toml:"public_key"`
	PrivateKey       string         `toml:"private_key"`
	PrivateKeyFile   string         `toml:"private_key_file"`
	SealedPrivateKey string         `toml:"sealed_private_key"`
	PassphraseFile   string         `toml:"passphrase_file"`
	RequestTimeout   ConfigDuration `toml:"request_timeout"`
	privateKey       string
	passphrase       string
}

func (cfg *URLSignConfig) PopulateMissing() error {
	if cfg.RequestTimeout.Duration == 0 {
		cfg.RequestTimeout.Duration = 1 * time.Minute
	}

	if cfg.PassphraseFile != "" {
		passphrase, err := ioutil.ReadFile(cfg.PassphraseFile)
		if err != nil {
			return fmt.Errorf("unable to load passphrase_file: %s", err)
		}
		cfg.passphrase = strings.TrimRight(string(passphrase), "\r\n")
	}

	nKeySources := 0
	for _, set := range []bool{
		cfg.PrivateKey != "",
		cfg.PrivateKeyFile != "",
		cfg.SealedPrivateKey != "",
	} {
		if set {
			nKeySources++
		}
	}
	if nKeySources > 1 {
		return errors.New("private_key, private_key_file and sealed_private_key are mutually exclusive")
	}

	cfg.privateKey = cfg.PrivateKey

	if cfg.PrivateKeyFile != "" {
		key, err := ioutil.ReadFile(cfg.PrivateKeyFile)
		if err != nil {
			return fmt.Errorf("unable to load private_key_file: %s", err)
		}
		cfg.privateKey = strings.TrimRight(string(key), "\r\n")
	}

	if cfg.SealedPrivateKey != "" {
		if cfg.passphrase == "" {
			return errors.New("sealed_private_key requires passphrase_file")
		}
		key, ok := ekey.OpenWithPassphrase(cfg.passphrase, cfg.SealedPrivateKey)
		if !ok {
			return errors.New("unable to open sealed_private_key, wrong passphrase?")
		}
		cfg.privateKey = string(key)
	}

	return nil
}

var (
	Config     = URLSignConfig{}
	httpClient = &fasthttp.Client{
		Name: "urlsign",
	}
)

func signOne(s *signer.Signer, pathQuery, method, paramSpec string) (string, error) {
	path, query := splitPathQuery(pathQuery)
	if path == "" {
		return "", errors.New("refusing to sign an empty path")
	}
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Parse(query)
	if paramSpec != "" {
		if err := parseParamSpec(args, paramSpec); err != nil {
			return "", err
		}
	}
	return s.Sign(path, method, argsToParams(args)), nil
}

func signLines(s *signer.Signer, in io.Reader, out io.Writer, method, matchGlob string) error {
	var globber glob.Glob

	if matchGlob != "" {
		g, err := glob.Compile(matchGlob, '/')
		if err != nil {
			return fmt.Errorf("unable to compile glob: %s", err)
		}
		globber = g
	}

	w := bufio.NewWriter(out)
	defer w.Flush()

	nSigned := 0
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			fmt.Fprintln(w, line)
			continue
		}
		path, query := splitPathQuery(trimmed)
		if path == "" {
			return fmt.Errorf("refusing to sign %q: empty path", trimmed)
		}
		if globber != nil && !globber.Match(path) {
			fmt.Fprintln(w, line)
			continue
		}
		args := fasthttp.AcquireArgs()
		args.Parse(query)
		signedURL := s.Sign(path, method, argsToParams(args))
		fasthttp.ReleaseArgs(args)
		fmt.Fprintln(w, signedURL)
		nSigned++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("unable to read input lines: %s", err)
	}

	log.WithFields(log.Fields{"signed": nSigned}).Info("batch signing complete")
	return nil
}

func doRequest(signedURL, method string) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(signedURL)
	req.Header.SetMethod(strings.ToUpper(method))

	begin := time.Now()
	if err := httpClient.DoTimeout(req, resp, Config.RequestTimeout.Duration); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"method":   strings.ToUpper(method),
		"status":   resp.StatusCode(),
		"duration": time.Since(begin),
	}).Info("request complete")

	if _, err := os.Stdout.Write(resp.Body()); err != nil {
		return err
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return fmt.Errorf("server responded with status %d", resp.StatusCode())
	}
	return nil
}

//go:embed example/defaults.cfg
var defaultConfig string

func main() {

	var (
		ConfigFilePath     = flag.String("config", "", "Path to the configuration file.")
		PrintDefaultConfig = flag.Bool("print-default-config", false, "Print the default config file and exit.")
		Sign               = flag.String("sign", "", "Sign a \"$path?$query\" string and print the signed URL.")
		Method             = flag.String("method", "GET", "HTTP method to sign for.")
		ParamSpec          = flag.String("params", "", "Extra query params as a shell quoted list of k=v pairs, overriding the -sign query.")
		Curl               = flag.Bool("curl", false, "With -sign, print a curl command instead of the bare URL.")
		Request            = flag.Bool("request", false, "With -sign, perform the request and write the response body to stdout.")
		SignStdin          = flag.Bool("sign-stdin", false, "Sign each \"$path?$query\" line read from stdin and print the results.")
		Match              = flag.String("match", "", "With -sign-stdin, only sign lines whose path matches this glob, other lines pass through unchanged.")
		SealKey            = flag.Bool("seal-key", false, "Seal the configured private key with the passphrase from passphrase_file and print the result.")
	)

	flag.Parse()

	if *PrintDefaultConfig {
		fmt.Print(defaultConfig)
		return
	}

	if *ConfigFilePath != "" {
		tomlData, err := toml.DecodeFile(*ConfigFilePath, &Config)
		if err != nil {
			log.Fatalf("unable to read configuration: %s", err)
		}
		hadUndecoded := false
		for _, k := range tomlData.Undecoded() {
			log.Printf("unknown config key: %s", k.String())
			hadUndecoded = true
		}
		if hadUndecoded {
			log.Fatalf("aborting due to invalid configuration.")
		}
	}

	err := Config.PopulateMissing()
	if err != nil {
		// Don't use logging to print this initial error, it looks nicer.
		fmt.Fprintf(os.Stderr, "unable to load config: %s\n", err)
		os.Exit(1)
	}

	if *SealKey {
		if Config.privateKey == "" {
			log.Fatalf("seal-key needs private_key or private_key_file set")
		}
		if Config.passphrase == "" {
			log.Fatalf("seal-key needs passphrase_file set")
		}
		fmt.Println(ekey.SealWithPassphrase(Config.passphrase, Config.privateKey))
		return
	}

	s, err := signer.New(
		signer.WithCredentials(Config.PublicKey, Config.privateKey),
		signer.WithEndpoint(Config.Endpoint),
	)
	if err != nil {
		log.Fatalf("unable to create signer: %s", err)
	}

	switch {
	case *Sign != "":
		signedURL, err := signOne(s, *Sign, *Method, *ParamSpec)
		if err != nil {
			log.Fatalf("unable to sign %q: %s", *Sign, err)
		}
		if *Curl {
			fmt.Printf("curl -sS %s\n", shellescape.Quote(signedURL))
			return
		}
		if *Request {
			if err := doRequest(signedURL, *Method); err != nil {
				log.Fatalf("request failed: %s", err)
			}
			return
		}
		fmt.Println(signedURL)
	case *SignStdin:
		if err := signLines(s, os.Stdin, os.Stdout, *Method, *Match); err != nil {
			log.Fatalf("unable to sign input lines: %s", err)
		}
	default:
		flag.Usage()
		os.Exit(1)
	}
}
