// Command mcleece is the CLI front-end for hybrid post-quantum/classical
// file encryption: keypair generation plus encrypt/decrypt subcommands,
// dispatching on profile the way obfs4proxy dispatches on client/server
// mode, and mapping every failure to a sysexits-style process exit code.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jarvisb1/mcleece-go"
	"github.com/jarvisb1/mcleece-go/actions"
	"github.com/jarvisb1/mcleece-go/keyfile"
)

const passwordEnvVar = "MCLEECE_PASSWORD"

func usage() {
	fmt.Fprintln(os.Stderr, "usage: mcleece <keypair|encrypt|decrypt> [flags]")
	fmt.Fprintln(os.Stderr, "  keypair --mode {simple|cbox} --prefix PATH   (cbox also writes PATH.vk)")
	fmt.Fprintln(os.Stderr, "  encrypt --mode {simple|cbox} --prefix PATH [--signing-key PATH] < plaintext > ciphertext")
	fmt.Fprintln(os.Stderr, "  decrypt --mode {simple|cbox} --prefix PATH [--verify-key PATH.vk] < ciphertext > plaintext")
	fmt.Fprintln(os.Stderr, "password is read from "+passwordEnvVar)
}

func parseProfile(s string) (mcleece.Profile, error) {
	switch s {
	case "simple":
		return mcleece.Simple, nil
	case "cbox":
		return mcleece.CBox, nil
	default:
		return 0, mcleece.Wrap(mcleece.Usage, "unknown --mode "+s, nil)
	}
}

func password() []byte {
	return []byte(os.Getenv(passwordEnvVar))
}

func fail(err error) {
	log.Printf("[ERROR] %s", err)
	os.Exit(mcleece.KindOf(err).ExitCode())
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(mcleece.Usage.ExitCode())
	}

	sub := os.Args[1]
	fs := flag.NewFlagSet(sub, flag.ExitOnError)
	mode := fs.String("mode", "simple", "profile: simple or cbox")
	prefix := fs.String("prefix", "", "key file path prefix")
	signingKeyPath := fs.String("signing-key", "", "sender's own private key file (cbox encrypt only)")
	verifyKeyPath := fs.String("verify-key", "", "sender's public verification key file (cbox decrypt only)")
	fs.Parse(os.Args[2:])

	if *prefix == "" {
		usage()
		os.Exit(mcleece.Usage.ExitCode())
	}
	profile, err := parseProfile(*mode)
	if err != nil {
		fail(err)
	}

	switch sub {
	case "keypair":
		if err := actions.KeypairToFile(*prefix, password(), profile); err != nil {
			fail(err)
		}
	case "encrypt":
		var signingKey []byte
		if profile == mcleece.CBox {
			if *signingKeyPath == "" {
				fail(mcleece.Wrap(mcleece.Usage, "cbox encrypt requires --signing-key", nil))
			}
			senderPriv, err := keyfile.LoadPrivateKey(*signingKeyPath, password(), mcleece.CBox)
			if err != nil {
				fail(err)
			}
			defer senderPriv.Wipe()
			signingKey = senderPriv.SigningKey()
		}
		if err := actions.Encrypt(*prefix, os.Stdin, os.Stdout, profile, mcleece.MaxChunk, signingKey); err != nil {
			fail(err)
		}
	case "decrypt":
		var verifyKey []byte
		if profile == mcleece.CBox {
			if *verifyKeyPath == "" {
				fail(mcleece.Wrap(mcleece.Usage, "cbox decrypt requires --verify-key", nil))
			}
			data, err := keyfile.LoadVerifyKey(*verifyKeyPath)
			if err != nil {
				fail(err)
			}
			verifyKey = data
		}
		if err := actions.Decrypt(*prefix, password(), os.Stdin, os.Stdout, profile, verifyKey); err != nil {
			fail(err)
		}
	default:
		usage()
		os.Exit(mcleece.Usage.ExitCode())
	}
}
