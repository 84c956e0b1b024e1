package canvas

import (
	"context"
	"fmt"

	"studio-backend/internal/store"
)

// ImportResult PDF를 저장된 화이트보드에 추가한 결과
type ImportResult struct {
	*store.WhiteboardResult
	Pages []string `json:"pages"`
}

// ImportPDFToBoard 저장된 화이트보드를 열어 PDF 페이지를 추가하고 저장한다.
// 배경 이미지는 저장되지 않으며 새 페이지의 라벨과 빈 획 목록만 남는다.
func ImportPDFToBoard(ctx context.Context, st *store.Store, raster Rasterizer, id, filename string, data []byte) (*ImportResult, error) {
	wb, err := st.GetWhiteboard(ctx, id)
	if err != nil {
		return nil, err
	}

	e := NewEditor(NewMemorySurface(), WithRasterizer(raster))
	if err := e.Open(ctx, wb); err != nil {
		return nil, err
	}
	keys, err := e.ImportPDF(ctx, filename, data)
	if err != nil {
		return nil, err
	}
	boardID, fields, err := e.SaveRequest(ctx)
	if err != nil {
		return nil, err
	}
	res, err := st.SaveWhiteboard(ctx, boardID, fields)
	if err != nil {
		return nil, fmt.Errorf("save whiteboard %s: %w", boardID, err)
	}
	e.MarkSaved(res.Whiteboard)
	return &ImportResult{WhiteboardResult: res, Pages: keys}, nil
}

// RenderBoardPage 저장된 화이트보드 한 페이지를 PNG로. page가 비면 활성 페이지
func RenderBoardPage(ctx context.Context, st *store.Store, id, page string, width, height int) ([]byte, error) {
	wb, err := st.GetWhiteboard(ctx, id)
	if err != nil {
		return nil, err
	}

	e := NewEditor(NewMemorySurface(), WithCanvasSize(width, height))
	if err := e.Open(ctx, wb); err != nil {
		return nil, err
	}
	if page != "" {
		if err := e.SwitchPage(ctx, page); err != nil {
			return nil, err
		}
	}
	return e.ExportPNG(ctx, false)
}
