package cartridge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewthecodertx/board-core/pkg/board"
	"github.com/andrewthecodertx/board-core/pkg/cartridge"
	_ "github.com/andrewthecodertx/board-core/pkg/variant/nrom"
)

// buildINES assembles a minimal iNES v1 image: a 16-byte header, an
// optional 512-byte trainer, prgBanks*16KiB of PRG-ROM, and
// chrBanks*8KiB of CHR-ROM.
func buildINES(mapperID uint8, flags6 uint8, prgBanks, chrBanks uint8, trainer bool) []byte {
	header := make([]byte, 16)
	copy(header[0:4], "NES\x1a")
	header[4] = prgBanks
	header[5] = chrBanks
	header[6] = flags6 | ((mapperID & 0x0F) << 4)
	header[7] = mapperID & 0xF0

	var out []byte
	out = append(out, header...)
	if trainer {
		out = append(out, make([]byte, 512)...)
	}
	prg := make([]byte, int(prgBanks)*16384)
	for i := range prg {
		prg[i] = byte(i)
	}
	out = append(out, prg...)
	if chrBanks > 0 {
		out = append(out, make([]byte, int(chrBanks)*8192)...)
	}
	return out
}

func TestLoadFromBytesParsesHeaderFields(t *testing.T) {
	data := buildINES(0, 0x01, 2, 1, false) // mapper 0, vertical mirroring
	rom, err := cartridge.LoadFromBytes(data)
	require.NoError(t, err)

	assert.Equal(t, uint8(0), rom.MapperID)
	assert.Equal(t, board.MirrorVertical, rom.Mirroring)
	assert.Len(t, rom.PRGROM, 2*16384)
	assert.Len(t, rom.CHRROM, 8192)
	assert.False(t, rom.HasSaveRAM)
}

func TestLoadFromBytesSkipsTrainerWhenPresent(t *testing.T) {
	data := buildINES(0, 0x04, 1, 0, true) // flags6 bit2: has trainer
	rom, err := cartridge.LoadFromBytes(data)
	require.NoError(t, err)

	require.Len(t, rom.PRGROM, 16384)
	assert.Equal(t, byte(1), rom.PRGROM[1], "PRG data must start after the trainer, not overlap it")
	assert.True(t, rom.HasTrainer)
}

func TestLoadFromBytesRejectsBadMagic(t *testing.T) {
	data := buildINES(0, 0, 1, 1, false)
	data[0] = 'X'
	_, err := cartridge.LoadFromBytes(data)
	assert.Error(t, err)
}

func TestLoadFromBytesFourScreenOverridesMirroringBit(t *testing.T) {
	data := buildINES(0, 0x09, 1, 1, false) // bits 0 and 3: vertical + four-screen
	rom, err := cartridge.LoadFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, board.MirrorFourScreen, rom.Mirroring)
}

func TestBindConstructsABoardForARegisteredMapper(t *testing.T) {
	data := buildINES(0, 0, 2, 1, false)
	rom, err := cartridge.LoadFromBytes(data)
	require.NoError(t, err)

	b, err := rom.Bind(nil, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "NROM", b.Descriptor.Tag)
}

func TestBindRejectsUnsupportedMapperID(t *testing.T) {
	data := buildINES(24, 0, 1, 1, false) // VRC6: no registered variant
	rom, err := cartridge.LoadFromBytes(data)
	require.NoError(t, err)

	_, err = rom.Bind(nil, 1, 1)
	assert.Error(t, err)
}
