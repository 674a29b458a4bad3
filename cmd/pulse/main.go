/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/urfave/cli"
)

const serviceName = "pulse"

// appVersion is set at build time:
//
//	go build -ldflags="-X main.appVersion=$(git describe --tags)"
var appVersion = "undefined"

var (
	configFlag = cli.StringFlag{
		Name:  "config, c",
		Usage: "Path to the engine configuration `file` (.json or .toml)",
		Value: "/etc/pulse/pulse.toml",
	}
	envFlag = cli.StringFlag{
		Name:  "env",
		Usage: "Path to a .env `file` loaded before the configuration",
		Value: ".env",
	}
	addrFlag = cli.StringFlag{
		Name:  "addr",
		Usage: "Base `URL` of a running engine; derived from listen_addr when empty",
	}
	reasonFlag = cli.StringFlag{
		Name:  "reason",
		Usage: "Reason recorded with the transition",
		Value: "manual",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = serviceName
	app.Usage = "Adaptive monitoring and alerting engine"
	app.Version = fmt.Sprintf("%s/%s/%s-%s", appVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	app.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "Run the engine with its HTTP API and gRPC health endpoint",
			Flags:  []cli.Flag{configFlag, envFlag},
			Action: serve,
		},
		{
			Name:  "rules",
			Usage: "Manage alert rules",
			Subcommands: []cli.Command{
				{
					Name:      "import",
					Usage:     "Create or update rules from a JSON or TOML file",
					ArgsUsage: "<file>",
					Flags:     []cli.Flag{configFlag, envFlag},
					Action:    importRules,
				},
			},
		},
		{
			Name:  "state",
			Usage: "Inspect or change the monitoring state",
			Subcommands: []cli.Command{
				{
					Name:      "force",
					Usage:     "Force the monitoring state (IDLE, ACTIVE or ALERT)",
					ArgsUsage: "<state>",
					Flags:     []cli.Flag{configFlag, envFlag, reasonFlag, addrFlag},
					Action:    forceState,
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("%s: %v", serviceName, err)
	}
}
