package lfbb_test

import (
	"fmt"
	"sync"
	"time"

	"github.com/drgolem/lfbb"
)

func Example() {
	buf := lfbb.New(make([]byte, 1024))

	var wg sync.WaitGroup
	wg.Add(2)

	// Producer goroutine
	go func() {
		defer wg.Done()
		payload := []byte("Hello from producer!")

		var region []byte
		for region == nil {
			region = buf.WriteAcquire(uint64(len(payload)))
			if region == nil {
				time.Sleep(time.Microsecond)
			}
		}
		n := copy(region, payload)
		buf.WriteRelease(uint64(n))
		fmt.Printf("Wrote %d bytes\n", n)
	}()

	// Consumer goroutine
	go func() {
		defer wg.Done()
		time.Sleep(time.Millisecond) // give the producer a head start

		region, available := buf.ReadAcquire()
		if available == 0 {
			fmt.Println("no data available")
			return
		}
		fmt.Printf("Read %d bytes: %s\n", available, region)
		buf.ReadRelease(available)
	}()

	wg.Wait()
	// Output:
	// Wrote 20 bytes
	// Read 20 bytes: Hello from producer!
}

func ExampleBuffer_WriteAcquire() {
	buf := lfbb.New(make([]byte, 64))

	region := buf.WriteAcquire(5)
	if region == nil {
		fmt.Println("no room")
		return
	}
	copy(region, "hello")
	buf.WriteRelease(uint64(len(region)))

	out, available := buf.ReadAcquire()
	fmt.Printf("%d: %s\n", available, out)
	// Output:
	// 5: hello
}
