package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/template"
)

// Keys copied into the header, in this order. Anything else in the .env is
// ignored.
var knownKeys = []string{
	"WIFI_SSID",
	"WIFI_PASSWORD",
	"AP_SSID",
	"AP_PASSWORD",
	"AP_IP_ADDRESS",
}

var headerTmpl = template.Must(template.New("header").Parse(
	`// generated_secrets.h - AUTO GENERATED, do not commit
#ifndef GENERATED_SECRETS_H
#define GENERATED_SECRETS_H

{{range .}}#define {{.Key}} "{{.Value}}"
{{end}}
#endif // GENERATED_SECRETS_H
`))

type define struct {
	Key, Value string
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `%s [options]

Generate a C header with credential defines from a .env file, for baking
into the panel firmware. Run from the firmware repository root.

`, os.Args[0])
		flag.PrintDefaults()
	}

	var (
		env = flag.String("env", ".env", "Credentials file to read.")
		out = flag.String("o", "src/generated_secrets.h", "Header file to write.")
	)
	flag.Parse()

	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(-1)
	}

	if err := run(*env, *out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(-1)
	}
}

func run(env, out string) error {
	vals, err := parseEnv(env)
	if err != nil {
		return err
	}

	var defines []define
	for _, key := range knownKeys {
		if v := vals[key]; v != "" {
			defines = append(defines, define{Key: key, Value: strings.ReplaceAll(v, `"`, `\"`)})
		}
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := headerTmpl.Execute(f, defines); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("wrote %s from %s (%d keys)\n", out, env, len(defines))
	return nil
}

func parseEnv(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	vals := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		vals[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return vals, scanner.Err()
}
