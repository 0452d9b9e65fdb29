// Package actions implements the three user-facing operations this system
// exposes: generating a keypair, encrypting a stream, and decrypting a
// stream. Each dispatches on mcleece.Profile and drives KeyFiles,
// SessionEnvelope, and FrameCodec in sequence, logging progress the way the
// teacher's obfs4proxy.go logs connection handling ([LEVEL] tag + context).
package actions

import (
	"io"
	"log"

	"github.com/jarvisb1/mcleece-go"
	"github.com/jarvisb1/mcleece-go/envelope"
	"github.com/jarvisb1/mcleece-go/framing"
	"github.com/jarvisb1/mcleece-go/keyfile"
)

// KeypairToFile implements Actions::keypair_to_file: it generates a fresh
// keypair for profile and writes "<pathPrefix>.pk"/"<pathPrefix>.sk".
func KeypairToFile(pathPrefix string, password []byte, profile mcleece.Profile) error {
	log.Printf("[INFO] keypair: generating %s keypair at %s", profile, pathPrefix)
	if err := keyfile.GenerateKeypairFiles(pathPrefix, password, profile); err != nil {
		log.Printf("[ERROR] keypair: %s", err)
		return err
	}
	log.Printf("[INFO] keypair: wrote %s.pk and %s.sk", pathPrefix, pathPrefix)
	return nil
}

// Encrypt implements Actions::encrypt. For CBox, signingKey is the sender's
// long-term ed25519 private key loaded from their own key file; it is
// ignored for Simple.
func Encrypt(pathPrefix string, in io.Reader, out io.Writer, profile mcleece.Profile, maxLength int, signingKey []byte) error {
	log.Printf("[INFO] encrypt: loading %s public key from %s.pk", profile, pathPrefix)
	pub, err := keyfile.LoadPublicKey(pathPrefix+".pk", profile)
	if err != nil {
		log.Printf("[ERROR] encrypt: %s", err)
		return err
	}

	var sess *envelope.Session
	var header []byte
	switch profile {
	case mcleece.Simple:
		sess, header, err = envelope.Build(pub)
	case mcleece.CBox:
		sess, header, err = envelope.BuildCBox(pub, signingKey)
	default:
		err = mcleece.Wrap(mcleece.DataErr, "unknown profile", nil)
	}
	if err != nil {
		log.Printf("[ERROR] encrypt: building session envelope: %s", err)
		return err
	}
	defer sess.Wipe()

	if _, err := out.Write(header); err != nil {
		log.Printf("[ERROR] encrypt: writing session header: %s", err)
		return mcleece.Wrap(mcleece.CantCreat, "writing session header", err)
	}

	if maxLength <= 0 || maxLength > mcleece.MaxChunk {
		maxLength = mcleece.MaxChunk
	}
	if err := framing.EncryptStream(out, in, sess.Key.Bytes(), sess.Nonce, maxLength); err != nil {
		log.Printf("[ERROR] encrypt: %s", err)
		return err
	}
	log.Printf("[INFO] encrypt: stream sealed")
	return nil
}

// Decrypt implements Actions::decrypt. For CBox, verifyKey is the sender's
// ed25519 verification key, obtained out of band; it is ignored for
// Simple.
func Decrypt(pathPrefix string, password []byte, in io.Reader, out io.Writer, profile mcleece.Profile, verifyKey []byte) error {
	log.Printf("[INFO] decrypt: loading %s private key from %s.sk", profile, pathPrefix)
	priv, err := keyfile.LoadPrivateKey(pathPrefix+".sk", password, profile)
	if err != nil {
		log.Printf("[ERROR] decrypt: %s", err)
		return err
	}
	defer priv.Wipe()

	headerSize := envelope.EncodedSize(profile)
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(in, header); err != nil {
		log.Printf("[ERROR] decrypt: reading session header: %s", err)
		return mcleece.Wrap(mcleece.DataErr, "session header truncated", err)
	}

	var sess *envelope.Session
	switch profile {
	case mcleece.Simple:
		sess, err = envelope.Parse(priv, header)
	case mcleece.CBox:
		sess, err = envelope.ParseCBox(priv, header, verifyKey)
	default:
		err = mcleece.Wrap(mcleece.DataErr, "unknown profile", nil)
	}
	if err != nil {
		log.Printf("[ERROR] decrypt: parsing session envelope: %s", err)
		return err
	}
	defer sess.Wipe()

	if err := framing.DecryptStream(out, in, sess.Key.Bytes(), sess.Nonce); err != nil {
		log.Printf("[ERROR] decrypt: %s", err)
		return err
	}
	log.Printf("[INFO] decrypt: stream opened")
	return nil
}
