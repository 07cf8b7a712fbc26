// Package main provides the Metro CLI.
//
//	metro serve        # start the API server
//	metro db:index     # create Mongo indexes
//	metro db:seed      # seed sample products
//	metro queue:work   # run queue workers standalone
//	metro route:list   # list API routes
package main
