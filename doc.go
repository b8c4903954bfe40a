// Package fileops implements a small MCP server that lets an agent host save
// files and create directories on the local machine.
//
// The server speaks line-delimited JSON-RPC 2.0 and answers initialize,
// tools/list and tools/call. It offers two tools, save_file and
// make_directory.
//
// Example:
//
//	package main
//
//	import (
//		"context"
//		"log"
//		"os"
//
//		"github.com/shaharia-lab/fileops"
//	)
//
//	func main() {
//		server, err := fileops.NewServer(
//			fileops.UseLogger(fileops.NewDefaultLogger()),
//			fileops.UseFilesystem(fileops.NewOSFilesystem()),
//		)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		stdio := fileops.NewStdIOServer(server, os.Stdin, os.Stdout)
//		if err := stdio.Run(context.Background()); err != nil {
//			log.Fatal(err)
//		}
//	}
package fileops
