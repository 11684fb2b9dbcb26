// Command simplefs is the interactive shell around the simplefs storage
// engine: format, mount/debug, create, remove, stat, cat, copyin, and
// copyout against a single disk image given as the first argument.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/cse30341/simplefs"
	"github.com/cse30341/simplefs/sizes"
)

func main() {
	app := &cli.App{
		Name:  "simplefs",
		Usage: "inspect and manipulate a simplefs disk image",
		Commands: []*cli.Command{
			{
				Name:      "format",
				Usage:     "create or wipe an image",
				ArgsUsage: "IMAGE (BLOCKS | PRESET)",
				Action:    cmdFormat,
			},
			{
				Name:      "debug",
				Usage:     "print the superblock and every valid inode",
				ArgsUsage: "IMAGE",
				Action:    cmdDebug,
			},
			{
				Name:      "create",
				Usage:     "reserve a new, empty inode",
				ArgsUsage: "IMAGE",
				Action:    cmdCreate,
			},
			{
				Name:      "remove",
				Usage:     "free an inode and its data blocks",
				ArgsUsage: "IMAGE INUMBER",
				Action:    cmdRemove,
			},
			{
				Name:      "stat",
				Usage:     "print the size of an inode",
				ArgsUsage: "IMAGE INUMBER",
				Action:    cmdStat,
			},
			{
				Name:      "cat",
				Usage:     "print the contents of an inode",
				ArgsUsage: "IMAGE INUMBER",
				Action:    cmdCat,
			},
			{
				Name:      "copyin",
				Usage:     "copy a host file into an inode",
				ArgsUsage: "IMAGE HOSTFILE INUMBER",
				Action:    cmdCopyin,
			},
			{
				Name:      "copyout",
				Usage:     "copy an inode's contents to a host file",
				ArgsUsage: "IMAGE INUMBER HOSTFILE",
				Action:    cmdCopyout,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("simplefs: %s", err)
	}
}

func cmdFormat(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return cli.Exit("usage: simplefs format IMAGE (BLOCKS | PRESET)", 1)
	}
	path := c.Args().Get(0)
	blocks, err := resolveBlockCount(c.Args().Get(1))
	if err != nil {
		return cli.Exit(err, 1)
	}

	disk, err := simplefs.Open(path, blocks)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer disk.Close()

	if err := simplefs.Format(disk); err != nil {
		return cli.Exit(err, 1)
	}
	fmt.Printf("formatted %s: %d blocks\n", path, blocks)
	return nil
}

// resolveBlockCount accepts either a raw decimal block count or the name of
// a preset from the sizes package.
func resolveBlockCount(arg string) (uint32, error) {
	if n, err := strconv.ParseUint(arg, 10, 32); err == nil {
		return uint32(n), nil
	}
	if preset, ok := sizes.Lookup(arg); ok {
		return preset.Blocks, nil
	}
	return 0, fmt.Errorf("%q is neither a block count nor a known preset (try one of %v)", arg, sizes.Names())
}

// openExisting opens path and takes its block count from the current file
// size, for every command except format. Existing contents are kept; only a
// trailing partial block, if any, is truncated away.
func openExisting(path string) (*simplefs.Disk, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	blocks := uint32(info.Size() / simplefs.BlockSize)
	return simplefs.Open(path, blocks)
}

func withMountedFileSystem(path string, fn func(fs *simplefs.FileSystem) error) error {
	disk, err := openExisting(path)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer disk.Close()

	fs := simplefs.NewFileSystem()
	if err := fs.Mount(disk); err != nil {
		return cli.Exit(err, 1)
	}
	defer fs.Unmount()

	if err := fn(fs); err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}

func cmdDebug(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return cli.Exit("usage: simplefs debug IMAGE", 1)
	}
	disk, err := openExisting(c.Args().Get(0))
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer disk.Close()

	return simplefs.Debug(os.Stdout, disk)
}

func cmdCreate(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return cli.Exit("usage: simplefs create IMAGE", 1)
	}
	return withMountedFileSystem(c.Args().Get(0), func(fs *simplefs.FileSystem) error {
		inumber, err := fs.Create()
		if err != nil {
			return err
		}
		fmt.Println(inumber)
		return nil
	})
}

func parseInumber(arg string) (uint32, error) {
	n, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid inode number %q: %w", arg, err)
	}
	return uint32(n), nil
}

func cmdRemove(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return cli.Exit("usage: simplefs remove IMAGE INUMBER", 1)
	}
	inumber, err := parseInumber(c.Args().Get(1))
	if err != nil {
		return cli.Exit(err, 1)
	}
	return withMountedFileSystem(c.Args().Get(0), func(fs *simplefs.FileSystem) error {
		return fs.Remove(inumber)
	})
}

func cmdStat(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return cli.Exit("usage: simplefs stat IMAGE INUMBER", 1)
	}
	inumber, err := parseInumber(c.Args().Get(1))
	if err != nil {
		return cli.Exit(err, 1)
	}
	return withMountedFileSystem(c.Args().Get(0), func(fs *simplefs.FileSystem) error {
		size, err := fs.Stat(inumber)
		if err != nil {
			return err
		}
		fmt.Println(size)
		return nil
	})
}

func cmdCat(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return cli.Exit("usage: simplefs cat IMAGE INUMBER", 1)
	}
	inumber, err := parseInumber(c.Args().Get(1))
	if err != nil {
		return cli.Exit(err, 1)
	}
	return withMountedFileSystem(c.Args().Get(0), func(fs *simplefs.FileSystem) error {
		size, err := fs.Stat(inumber)
		if err != nil {
			return err
		}
		buf := make([]byte, size)
		n, err := fs.Read(inumber, buf, int(size), 0)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(buf[:n])
		return err
	})
}

// copyChunk is the unit copyin/copyout move a host file in, matching a
// single data block so neither command needs special-case buffering.
const copyChunk = simplefs.BlockSize

func cmdCopyin(c *cli.Context) error {
	if c.Args().Len() != 3 {
		return cli.Exit("usage: simplefs copyin IMAGE HOSTFILE INUMBER", 1)
	}
	hostPath := c.Args().Get(1)
	inumber, err := parseInumber(c.Args().Get(2))
	if err != nil {
		return cli.Exit(err, 1)
	}

	return withMountedFileSystem(c.Args().Get(0), func(fs *simplefs.FileSystem) error {
		host, err := os.Open(hostPath)
		if err != nil {
			return err
		}
		defer host.Close()

		buf := make([]byte, copyChunk)
		offset := 0
		for {
			n, readErr := host.Read(buf)
			if n > 0 {
				written, writeErr := fs.Write(inumber, buf, n, offset)
				if writeErr != nil {
					return writeErr
				}
				offset += written
				if written < n {
					return fmt.Errorf("copyin: ran out of space after %d bytes", offset)
				}
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				return readErr
			}
		}
		fmt.Printf("copied %d bytes into inode %d\n", offset, inumber)
		return nil
	})
}

func cmdCopyout(c *cli.Context) error {
	if c.Args().Len() != 3 {
		return cli.Exit("usage: simplefs copyout IMAGE INUMBER HOSTFILE", 1)
	}
	inumber, err := parseInumber(c.Args().Get(1))
	if err != nil {
		return cli.Exit(err, 1)
	}
	hostPath := c.Args().Get(2)

	return withMountedFileSystem(c.Args().Get(0), func(fs *simplefs.FileSystem) error {
		host, err := os.Create(hostPath)
		if err != nil {
			return err
		}
		defer host.Close()

		size, err := fs.Stat(inumber)
		if err != nil {
			return err
		}

		buf := make([]byte, copyChunk)
		offset := 0
		for offset < int(size) {
			length := copyChunk
			if offset+length > int(size) {
				length = int(size) - offset
			}
			n, err := fs.Read(inumber, buf, length, offset)
			if err != nil {
				return err
			}
			if _, err := host.Write(buf[:n]); err != nil {
				return err
			}
			offset += n
			if n == 0 {
				break
			}
		}
		fmt.Printf("copied %d bytes out of inode %d\n", offset, inumber)
		return nil
	})
}
