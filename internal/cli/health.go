package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"vllmsup/internal/supervisor"
)

// errNotHealthy makes the health command exit non-zero without usage output.
var errNotHealthy = errors.New("server not healthy")

func runHealth(ctx context.Context, a *app, host string, port int) error {
	sup, err := a.newSupervisor()
	if err != nil {
		return err
	}
	eff := sup.Config()
	if host == "" {
		host = eff.Host
	}
	url := "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + supervisor.HealthPath
	ok, perr := supervisor.Probe(ctx, nil, url, eff.RequestTimeout)
	if !ok {
		if perr != nil {
			a.log.Debug().Err(perr).Str("url", url).Msg("probe failed")
		}
		fmt.Fprintf(a.out, "%s: not ready\n", url)
		return errNotHealthy
	}
	fmt.Fprintf(a.out, "%s: ok\n", url)
	return nil
}
