// Command growthdesk is the coaching dashboard for the artist analytics
// backend.
package main

func main() {
	Execute()
}
