package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Yarikttyui/pinkmessik/config"
	"github.com/Yarikttyui/pinkmessik/internal/auth"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "hubctl",
		Usage: "operational helpers for the pinkmessik hub",
		Commands: []*cli.Command{
			{
				Name:  "token",
				Usage: "mint a dev access token with the configured JWT secret",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Usage: "user uuid", Required: true},
					&cli.DurationFlag{Name: "ttl", Value: 12 * time.Hour},
				},
				Action: func(c *cli.Context) error {
					userID, err := uuid.Parse(c.String("user"))
					if err != nil {
						return fmt.Errorf("invalid user id: %w", err)
					}
					cfg := config.LoadConfig()
					token, err := auth.GenerateUserToken(userID, cfg.JWTSecret, c.Duration("ttl"))
					if err != nil {
						return err
					}
					fmt.Println(token)
					return nil
				},
			},
			{
				Name:  "health",
				Usage: "probe the hub's health endpoint",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Value: "http://localhost:8080/health"},
				},
				Action: func(c *cli.Context) error {
					resp, err := http.Get(c.String("url"))
					if err != nil {
						return err
					}
					defer resp.Body.Close()
					body, _ := io.ReadAll(resp.Body)
					fmt.Printf("%s: %s\n", resp.Status, body)
					if resp.StatusCode != http.StatusOK {
						return cli.Exit("unhealthy", 1)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
