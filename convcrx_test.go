/*------------------------------------------------------------------------------
* gnsscrx unit test driver : options and file conversion
*-----------------------------------------------------------------------------*/
package gnsscrx_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnsscrx"
)

func Test_options_loadsave(t *testing.T) {
	assert := assert.New(t)
	file := filepath.Join(t.TempDir(), "opts.yaml")

	opt := gnsscrx.DefaultOptions()
	opt.ObsOrder, opt.ResetInterval, opt.Compress = 2, 100, "zst"
	require.NoError(t, gnsscrx.SaveOpts(file, &opt))

	loaded := gnsscrx.Options{}
	require.NoError(t, gnsscrx.LoadOpts(file, &loaded))
	assert.Equal(opt, loaded)

	/* keys missing in the file keep their values */
	require.NoError(t, os.WriteFile(file, []byte("obsorder: 1\n"), 0o644))
	loaded = gnsscrx.DefaultOptions()
	require.NoError(t, gnsscrx.LoadOpts(file, &loaded))
	assert.Equal(1, loaded.ObsOrder)
	assert.Equal(gnsscrx.DEF_CLKORDER, loaded.ClockOrder)

	require.NoError(t, os.WriteFile(file, []byte("date: 05-Jan-20 07:08\n"), 0o644))
	require.NoError(t, gnsscrx.LoadOpts(file, &loaded))
	assert.Equal("05-Jan-20 07:08", loaded.Date)

	require.NoError(t, os.WriteFile(file, []byte("obsorder: 6\n"), 0o644))
	assert.Error(gnsscrx.LoadOpts(file, &loaded))
}

func Test_options_check(t *testing.T) {
	assert := assert.New(t)
	for _, mod := range []func(*gnsscrx.Options){
		func(o *gnsscrx.Options) { o.ObsOrder = -1 },
		func(o *gnsscrx.Options) { o.ClockOrder = gnsscrx.MAXDIFFORDER + 1 },
		func(o *gnsscrx.Options) { o.ResetInterval = -1 },
		func(o *gnsscrx.Options) { o.Rescale, o.RescaleModulus = true, 0 },
		func(o *gnsscrx.Options) { o.Program = strings.Repeat("X", 21) },
		func(o *gnsscrx.Options) { o.Compress = "Z" },
		func(o *gnsscrx.Options) { o.Date = "2020-01-05" },
	} {
		opt := gnsscrx.DefaultOptions()
		mod(&opt)
		assert.Error(opt.Check())
	}
	opt := gnsscrx.DefaultOptions()
	assert.NoError(opt.Check())
}

func Test_convcrx_outpath(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("abcd0010.21d", gnsscrx.OutPath("abcd0010.21o", "", "", gnsscrx.CONV_RNX2CRX))
	assert.Equal("ABCD0010.21O", gnsscrx.OutPath("ABCD0010.21D.gz", "", "", gnsscrx.CONV_CRX2RNX))
	assert.Equal(filepath.Join("out", "x.crx.gz"), gnsscrx.OutPath(filepath.Join("in", "x.rnx"), "out", "gz", gnsscrx.CONV_RNX2CRX))
	assert.Equal("X_MO.RNX", gnsscrx.OutPath("X_MO.CRX", "", "", gnsscrx.CONV_CRX2RNX))
	assert.Equal("x.obs.crx", gnsscrx.OutPath("x.obs", "", "", gnsscrx.CONV_RNX2CRX))
	assert.Equal("x.crx.rnx.rnx.zst", gnsscrx.OutPath("x.crx.rnx", "", "zst", gnsscrx.CONV_CRX2RNX))
}

func writeLines(t *testing.T, path string, lines []string) {
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func readLines(t *testing.T, path string) []string {
	src, closer, err := gnsscrx.OpenLineSource(path)
	require.NoError(t, err)
	defer closer.Close()
	return readAll(t, src)
}

func Test_convcrx_files(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	files := []string{filepath.Join(dir, "site0010.20o"), filepath.Join(dir, "SITE00XXX_R_20200010000_01D_30S_MO.rnx")}
	writeLines(t, files[0], obsFile2())
	writeLines(t, files[1], obsFile3())

	opt := gnsscrx.DefaultOptions()
	opt.Compress, opt.Parallel = "gz", 2
	stats, err := gnsscrx.ConvertFiles(context.Background(), files, filepath.Join(dir, "crx"), &opt, gnsscrx.CONV_RNX2CRX)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(filepath.Join(dir, "crx", "site0010.20d.gz"), stats[0].Output)
	assert.Equal(2, stats[0].Version)
	assert.Equal(3, stats[1].Version)
	fi, err := os.Stat(stats[0].Output)
	require.NoError(t, err)
	assert.Equal(fi.Size(), stats[0].BytesOut)

	opt.Compress = ""
	crxs := []string{stats[0].Output, stats[1].Output}
	stats, err = gnsscrx.ConvertFiles(context.Background(), crxs, filepath.Join(dir, "rnx"), &opt, gnsscrx.CONV_CRX2RNX)
	require.NoError(t, err)
	assert.Equal(filepath.Join(dir, "rnx", "SITE00XXX_R_20200010000_01D_30S_MO.rnx"), stats[1].Output)
	for i, want := range [][]string{obsFile2(), obsFile3()} {
		if diff := cmp.Diff(want, readLines(t, stats[i].Output)); diff != "" {
			t.Errorf("file %d mismatch (-want +got):\n%s", i, diff)
		}
	}

	var buff bytes.Buffer
	require.NoError(t, gnsscrx.WriteStat(&buff, stats))
	var decoded []gnsscrx.Stat
	require.NoError(t, json.Unmarshal(buff.Bytes(), &decoded))
	assert.Equal(*stats[1], decoded[1])
}

func Test_convcrx_failure(t *testing.T) {
	dir := t.TempDir()
	infile := filepath.Join(dir, "bad.crx")
	writeLines(t, infile, append(crxHeader3(), header3...)[:3])

	outfile := filepath.Join(dir, "bad.rnx")
	_, err := gnsscrx.Crx2RnxFile(context.Background(), infile, outfile, nil)
	assert.Error(t, err)
	_, err = os.Stat(outfile)
	assert.True(t, os.IsNotExist(err))
}
