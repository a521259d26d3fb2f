package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/mr-tron/base58"

	actx "go.hackfix.me/rastore/app/context"
	aerrors "go.hackfix.me/rastore/app/errors"
	"go.hackfix.me/rastore/crypto"
	"go.hackfix.me/rastore/store"
	"go.hackfix.me/rastore/store/badger"
	"go.hackfix.me/rastore/store/bolt"
	"go.hackfix.me/rastore/store/leveldb"
	"go.hackfix.me/rastore/store/memory"
	"go.hackfix.me/rastore/store/sqlite"
)

const inMemory = ":memory:"

// openStore opens the storage engine of the given kind. Engines that persist
// data are stored in a subdirectory or file of dataDir, which is created if
// it doesn't exist.
func openStore(appCtx *actx.Context, engine, dataDir, passphrase string) (store.Engine, error) {
	if passphrase != "" && engine != "badger" {
		return nil, aerrors.NewRuntimeError(
			fmt.Sprintf("encryption is not supported by the %s engine", engine), nil,
			"Use --engine=badger, or remove the encryption passphrase.")
	}

	mem := dataDir == inMemory
	if !mem && engine != "memory" {
		if err := appCtx.FS.MkdirAll(dataDir, 0o700); err != nil {
			return nil, aerrors.NewRuntimeError("failed creating data directory", err, "")
		}
	}

	var (
		s   store.Engine
		err error
	)
	switch engine {
	case "memory":
		s = memory.New()
	case "badger":
		var encKey []byte
		if passphrase != "" {
			encKey, err = encryptionKey(appCtx.FS, dataDir, passphrase)
			if err != nil {
				return nil, err
			}
		}
		path := filepath.Join(dataDir, "badger")
		if mem {
			path = ""
		}
		s, err = badger.Open(path, encKey)
	case "bolt":
		if mem {
			return nil, aerrors.NewRuntimeError("the bolt engine requires a data directory", nil,
				"Set --data-dir to a filesystem path, or use another engine.")
		}
		s, err = bolt.Open(filepath.Join(dataDir, "store.bolt"))
	case "leveldb":
		if mem {
			s, err = leveldb.OpenMem()
		} else {
			s, err = leveldb.Open(filepath.Join(dataDir, "leveldb"))
		}
	case "sqlite":
		path := inMemory
		if !mem {
			path = filepath.Join(dataDir, "store.db")
		}
		s, err = sqlite.Open(appCtx.Ctx, path, appCtx.Logger)
	default:
		return nil, aerrors.NewRuntimeError(fmt.Sprintf("unknown engine '%s'", engine), nil, "")
	}

	if err != nil {
		return nil, aerrors.NewRuntimeError(fmt.Sprintf("failed opening %s store", engine), err, "")
	}

	return s, nil
}

// encryptionKey derives the store encryption key from the passphrase. The
// salt is read from dataDir, and generated on first use.
func encryptionKey(fs vfs.FileSystem, dataDir, passphrase string) ([]byte, error) {
	var salt []byte
	if dataDir == inMemory {
		var err error
		if salt, err = crypto.NewSalt(); err != nil {
			return nil, err
		}
		return crypto.DeriveKey(passphrase, salt)
	}

	// The salt is stored base58-encoded.
	saltPath := filepath.Join(dataDir, "salt")
	saltEnc, err := vfs.ReadFile(fs, saltPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if salt, err = crypto.NewSalt(); err != nil {
			return nil, err
		}
		err = vfs.WriteFile(fs, saltPath, []byte(base58.Encode(salt)), 0o600)
	case err == nil:
		salt, err = base58.Decode(strings.TrimSpace(string(saltEnc)))
	}
	if err != nil {
		return nil, aerrors.NewRuntimeError("failed loading encryption salt", err, "")
	}

	return crypto.DeriveKey(passphrase, salt)
}
