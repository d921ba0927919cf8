// Command minimodel validates and exports JSON documents against a YAML
// model schema.
//
//	minimodel validate --schema post.yaml post.json
//	minimodel export --schema post.yaml --target db post.json
package main

func main() {
	Execute()
}
