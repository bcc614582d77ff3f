package mock

import (
	"io"
	"sync"

	"edge-speech-gateway/application/ports/outbound"
)

// Filter is an in-memory AudioFilterPort: each spawned process pumps its
// input through Transform into its output, mimicking the pipe behavior of a
// real subprocess.
type Filter struct {
	SpawnErr  error
	Transform func([]byte) []byte

	mu         sync.Mutex
	spawned    int
	terminated int
}

func (f *Filter) Spawn(volume float64, format string) (outbound.FilterProcess, error) {
	if f.SpawnErr != nil {
		return nil, f.SpawnErr
	}

	inReader, inWriter := io.Pipe()
	outReader, outWriter := io.Pipe()

	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := inReader.Read(buf)
			if n > 0 {
				data := append([]byte(nil), buf[:n]...)
				if f.Transform != nil {
					data = f.Transform(data)
				}
				if _, werr := outWriter.Write(data); werr != nil {
					inReader.CloseWithError(werr)
					return
				}
			}
			if err != nil {
				outWriter.Close()
				return
			}
		}
	}()

	f.mu.Lock()
	f.spawned++
	f.mu.Unlock()

	return &filterProc{parent: f, input: inWriter, output: outReader}, nil
}

func (f *Filter) SpawnCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.spawned
}

func (f *Filter) TerminateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.terminated
}

type filterProc struct {
	parent *Filter
	input  *io.PipeWriter
	output *io.PipeReader
	once   sync.Once
}

func (p *filterProc) Input() io.WriteCloser { return p.input }

func (p *filterProc) Output() io.Reader { return p.output }

func (p *filterProc) Terminate() error {
	p.once.Do(func() {
		p.input.Close()
		p.output.Close()
		p.parent.mu.Lock()
		p.parent.terminated++
		p.parent.mu.Unlock()
	})
	return nil
}
