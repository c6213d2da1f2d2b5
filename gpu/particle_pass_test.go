package gpu

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/flare/particle"
)

type fakeQueue struct {
	writes [][]byte
	failOn int
	err    error
}

func (q *fakeQueue) WriteBuffer(buffer *wgpu.Buffer, offset uint64, data []byte) error {
	q.writes = append(q.writes, data)
	if q.err != nil && len(q.writes) == q.failOn {
		return q.err
	}
	return nil
}

func frameData() ([]instanceData, []byte) {
	instances := appendInstances(nil, []particle.Instance{{ModelView: mgl32.Ident4()}})
	uniforms, _ := appendUniforms(nil, mgl32.Ident4(), 1, 1)
	return instances, uniforms
}

func TestWriteFrameBuffers(t *testing.T) {
	instances, uniforms := frameData()
	q := &fakeQueue{}

	require.NoError(t, writeFrameBuffers(q, nil, instances, nil, uniforms))
	require.Len(t, q.writes, 2)
	assert.Len(t, q.writes[0], int(instanceStride))
	assert.Len(t, q.writes[1], uniformSlot)
}

func TestWriteFrameBuffersReturnsQueueErrors(t *testing.T) {
	lost := errors.New("device lost")
	instances, uniforms := frameData()

	q := &fakeQueue{failOn: 1, err: lost}
	err := writeFrameBuffers(q, nil, instances, nil, uniforms)
	assert.ErrorIs(t, err, lost)
	assert.Contains(t, err.Error(), "instance buffer")
	assert.Len(t, q.writes, 1)

	q = &fakeQueue{failOn: 2, err: lost}
	err = writeFrameBuffers(q, nil, instances, nil, uniforms)
	assert.ErrorIs(t, err, lost)
	assert.Contains(t, err.Error(), "uniform buffer")
}

func TestWriteFrameBuffersSkipsEmptyFrames(t *testing.T) {
	q := &fakeQueue{}
	require.NoError(t, writeFrameBuffers(q, nil, nil, nil, nil))
	assert.Empty(t, q.writes)
}
