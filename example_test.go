package blockalloc

import (
	"fmt"
	"sync"
	"unsafe"
)

// Example demonstrates basic allocator usage
func Example() {
	a, err := New(Config{BlockSize: 64, BlockCount: 128})
	if err != nil {
		panic(err)
	}
	defer a.Close()

	// Allocate a block by handle
	h, ok := a.Allocate()
	fmt.Printf("Allocated: %v, offset %d\n", ok, h.Offset())

	// Use it as bytes
	buf := a.Bytes(h)
	copy(buf, "hello")
	fmt.Printf("Block size: %d, contents: %s\n", len(buf), buf[:5])

	// Allocate a typed value (zeroed)
	ptr := Alloc[int64](a)
	*ptr = 42
	fmt.Printf("Allocated int64 with value: %d\n", *ptr)

	fmt.Printf("Blocks in use: %d of %d\n", a.Size(), a.Capacity())

	a.Deallocate(h)
	FreeTyped(a, ptr)
	fmt.Printf("After free, blocks in use: %d\n", a.Size())

	// Output:
	// Allocated: true, offset 0
	// Block size: 64, contents: hello
	// Allocated int64 with value: 42
	// Blocks in use: 2 of 128
	// After free, blocks in use: 0
}

// ExampleNewSafe demonstrates allocator use from several goroutines
func ExampleNewSafe() {
	a, err := NewSafe(Config{BlockSize: 64, BlockCount: 8})
	if err != nil {
		panic(err)
	}
	defer a.Close()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if b := a.AllocBytes(); b != nil {
					a.FreeBytes(b)
				}
			}
		}()
	}
	wg.Wait()

	fmt.Printf("Blocks in use: %d\n", a.Size())

	// Output:
	// Blocks in use: 0
}

// ExampleLockerSection demonstrates supplying a host lock
func ExampleLockerSection() {
	var mu sync.Mutex
	a, err := New(Config{BlockSize: 32, BlockCount: 4, Section: LockerSection{L: &mu}})
	if err != nil {
		panic(err)
	}
	defer a.Close()

	h, _ := a.Allocate()
	fmt.Println("Allocated block at offset", h.Offset())

	// Output:
	// Allocated block at offset 0
}

// ExampleAllocator_Allocate demonstrates exhaustion and lowest-index reuse
func ExampleAllocator_Allocate() {
	a, _ := New(Config{BlockSize: 16, BlockCount: 4, Alignment: 8})
	defer a.Close()

	var handles []Handle
	for {
		h, ok := a.Allocate()
		if !ok {
			break
		}
		handles = append(handles, h)
	}
	fmt.Println("Handles:", handles)

	a.Deallocate(handles[2])
	a.Deallocate(handles[1])
	h, _ := a.Allocate()
	fmt.Println("Reused:", h)

	// Output:
	// Handles: [0 16 32 48]
	// Reused: 16
}

// ExampleAllocator_Free demonstrates the strict double-free check
func ExampleAllocator_Free() {
	a, _ := New(Config{BlockSize: 16, BlockCount: 4, Alignment: 8})
	defer a.Close()

	h, _ := a.Allocate()
	fmt.Println(a.Free(h))
	fmt.Println(a.Free(h))
	fmt.Println(a.Free(h + 1))
	fmt.Println(a.Deallocate(h))

	// Output:
	// <nil>
	// blockalloc: block not allocated
	// blockalloc: bad block handle
	// true
}

// ExampleAllocator_Stats demonstrates monitoring pool usage
func ExampleAllocator_Stats() {
	a, _ := New(Config{BlockSize: 64, BlockCount: 20, Alignment: 8})
	defer a.Close()

	for i := 0; i < 5; i++ {
		a.Allocate()
	}

	m := a.Stats()
	fmt.Printf("Metrics:\n")
	fmt.Printf("  In use: %d blocks\n", m.InUse)
	fmt.Printf("  Free: %d blocks\n", m.Free)
	fmt.Printf("  Pool: %d bytes\n", m.PoolBytes)
	fmt.Printf("  Bitmap: %d bytes\n", m.BitmapBytes)
	fmt.Printf("  Utilization: %.1f%%\n", m.Utilization*100)

	// Output:
	// Metrics:
	//   In use: 5 blocks
	//   Free: 15 blocks
	//   Pool: 1280 bytes
	//   Bitmap: 3 bytes
	//   Utilization: 25.0%
}

// ExampleAlloc_alignment demonstrates that every block is aligned
func ExampleAlloc_alignment() {
	a, _ := New(Config{BlockSize: 32, BlockCount: 4, Alignment: 32})
	defer a.Close()

	ptr1 := Alloc[int8](a)
	ptr2 := Alloc[int64](a)
	ptr3 := Alloc[int32](a)

	fmt.Printf("int8 address alignment: %d\n", uintptr(unsafe.Pointer(ptr1))%32)
	fmt.Printf("int64 address alignment: %d\n", uintptr(unsafe.Pointer(ptr2))%32)
	fmt.Printf("int32 address alignment: %d\n", uintptr(unsafe.Pointer(ptr3))%32)

	// Output:
	// int8 address alignment: 0
	// int64 address alignment: 0
	// int32 address alignment: 0
}
