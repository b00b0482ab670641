package model

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path"
	"time"

	"github.com/gofrs/flock"
)

// DefaultDirCreationPerm is used when creating directories for model files.
const DefaultDirCreationPerm = os.FileMode(0755)

// lockedWrite atomically writes a model file: the content goes to
// filePath+".tmp" and is renamed into place afterwards. A filePath+".lock"
// file coordinates multiple processes writing the same model at the same
// time.
func lockedWrite(filePath string, write func(w io.Writer) error) error {
	if err := os.MkdirAll(path.Dir(filePath), DefaultDirCreationPerm); err != nil {
		return fmt.Errorf("model: create directory for %s: %w", filePath, err)
	}

	lockPath := filePath + ".lock"
	var mainErr error
	errLock := execOnFileLock(lockPath, func() {
		tmpPath := filePath + ".tmp"
		tmpFile, err := os.Create(tmpPath)
		if err != nil {
			mainErr = fmt.Errorf("model: create temporary file %s: %w", tmpPath, err)
			return
		}
		var tmpFileClosed bool
		defer func() {
			// On error, make sure the unfinished temporary file is removed.
			if !tmpFileClosed {
				if err := tmpFile.Close(); err != nil {
					log.Printf("Failed closing temporary file %q: %v", tmpPath, err)
				}
				if err := os.Remove(tmpPath); err != nil {
					log.Printf("Failed removing temporary file %q: %v", tmpPath, err)
				}
			}
		}()

		w := bufio.NewWriter(tmpFile)
		if mainErr = write(w); mainErr != nil {
			return
		}
		if mainErr = w.Flush(); mainErr != nil {
			mainErr = fmt.Errorf("model: flush %s: %w", tmpPath, mainErr)
			return
		}

		tmpFileClosed = true
		if err := tmpFile.Close(); err != nil {
			mainErr = fmt.Errorf("model: close temporary file %s: %w", tmpPath, err)
			return
		}
		if err := os.Rename(tmpPath, filePath); err != nil {
			mainErr = fmt.Errorf("model: move %s to %s: %w", tmpPath, filePath, err)
			return
		}

		if err := os.Remove(lockPath); err != nil {
			log.Printf("Warning: error removing lock file %q: %v", lockPath, err)
		}
	})
	if mainErr != nil {
		return mainErr
	}
	if errLock != nil {
		return fmt.Errorf("model: locking %s to write %s: %w", lockPath, filePath, errLock)
	}
	return nil
}

// execOnFileLock opens the lockPath file (creating it if needed), locks it
// and executes fn. If lockPath is already locked it polls with a 1 to 2
// second period until it acquires the lock.
func execOnFileLock(lockPath string, fn func()) (err error) {
	fileLock := flock.New(lockPath)
	for {
		locked, err := fileLock.TryLock()
		if err != nil {
			return fmt.Errorf("trying to lock %s: %w", lockPath, err)
		}
		if locked {
			break
		}
		time.Sleep(time.Millisecond * time.Duration(1000+rand.Intn(1000)))
	}

	// Unlock in a deferred function, so it happens even if fn panics.
	defer func() {
		if unlockErr := fileLock.Unlock(); unlockErr != nil {
			if err == nil {
				err = fmt.Errorf("unlocking %s: %w", lockPath, unlockErr)
			} else {
				log.Printf("Error unlocking file %q: %v", lockPath, unlockErr)
			}
		}
	}()

	fn()
	return
}
