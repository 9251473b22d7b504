package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/banshee-data/gtmerge/internal/fsutil"
	"github.com/banshee-data/gtmerge/internal/testutil"
	"github.com/banshee-data/gtmerge/internal/trip"
)

func TestCheckInputs(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.AddFile("in/oba.csv", []byte("x"))
	require.NoError(t, mfs.MkdirAll("in/dir", 0o755))

	assert.NoError(t, CheckInputs(mfs, "in/oba.csv"))
	assert.True(t, errors.Is(CheckInputs(mfs, "in/oba.csv", "in/gt.xlsx"), ErrInputMissing))
	assert.True(t, errors.Is(CheckInputs(mfs, "in/dir"), ErrInputMissing))
	assert.True(t, errors.Is(CheckInputs(mfs, ""), ErrInputMissing))
}

func TestReadOBAFile(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.AddFile("oba.csv", []byte("\ufeffUser ID,Google Activity,Duration* (minutes)\n"+
		"obaUser_006,WALKING,10\n"+
		"obaUser_008,\"IN_VEHICLE\",3,extra\n"+
		",,\n"))

	tbl, err := ReadOBAFile(mfs, "oba.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{trip.ColOBAUserID, trip.ColOBAActivity, trip.ColOBADuration}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "IN_VEHICLE", tbl.Records()[1][trip.ColOBAActivity])
}

func TestReadOBAFile_Missing(t *testing.T) {
	_, err := ReadOBAFile(fsutil.NewMemoryFileSystem(), "nope.csv")
	assert.True(t, errors.Is(err, ErrInputMissing))
}

func TestReadGTFile(t *testing.T) {
	xl := excelize.NewFile()
	sheet := xl.GetSheetName(0)
	require.NoError(t, xl.SetSheetRow(sheet, "A1", &[]interface{}{"GT_Collector", "GT_Date", "GT_TimeOrig", "Unnamed: 3"}))
	require.NoError(t, xl.SetSheetRow(sheet, "A2", &[]interface{}{"Stark", 43767, 0.5, ""}))
	require.NoError(t, xl.SetSheetRow(sheet, "A3", &[]interface{}{"Lannister", "2019-10-30", "14:00:00", ""}))
	buf, err := xl.WriteToBuffer()
	require.NoError(t, err)

	mfs := fsutil.NewMemoryFileSystem()
	mfs.AddFile("gt.xlsx", buf.Bytes())

	tbl, err := ReadGTFile(mfs, "gt.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"GT_Collector", "GT_Date", "GT_TimeOrig", "Unnamed: 3"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	recs := tbl.Records()
	assert.Equal(t, "Stark", recs[0][trip.ColGTCollector])
	assert.Equal(t, "43767", recs[0][trip.ColGTDate])
	assert.Equal(t, "0.5", recs[0][trip.ColGTTimeOrig])
	assert.Equal(t, "14:00:00", recs[1][trip.ColGTTimeOrig])
}

func TestReadGTFile_NotAWorkbook(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.AddFile("gt.xlsx", []byte("GT_Collector,GT_Date\n"))

	_, err := ReadGTFile(mfs, "gt.xlsx")
	assert.True(t, errors.Is(err, ErrInputMalformed))
}

func TestValidateSchema(t *testing.T) {
	tbl := testutil.GTTable(testutil.NewGTRow("Stark", 1, 1, "2019-10-29", "08:30:00", "08:45:00", "WALKING"))
	assert.NoError(t, ValidateSchema("ground truth", tbl, trip.GTRequiredColumns))

	err := ValidateSchema("OBA", tbl, trip.OBARequiredColumns)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInputMalformed))
	assert.Contains(t, err.Error(), trip.ColOBAUserID)

	err = ValidateSchema("OBA", trip.Table{Header: []string{trip.ColOBAUserID}}, nil)
	assert.True(t, errors.Is(err, ErrInputMalformed))
}

func TestReadDeviceList(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.AddFile("devices.txt", []byte(" obaUser_006, ,obaUser_008,obaUser_006\r\nobaUser_009\n"))
	mfs.AddFile("empty.txt", []byte(" , \n"))

	got, err := ReadDeviceList(mfs, "devices.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"obaUser_006", "obaUser_008", "obaUser_009"}, got)

	set := DeviceSet(got)
	assert.Len(t, set, 3)
	assert.Nil(t, DeviceSet(nil))

	_, err = ReadDeviceList(mfs, "empty.txt")
	assert.True(t, errors.Is(err, ErrInputMalformed))
	_, err = ReadDeviceList(mfs, "missing.txt")
	assert.True(t, errors.Is(err, ErrInputMissing))
}
