package catalog

import "encoding/json"

// Wire shapes of the upstream catalog API. Fields the pipeline does not use
// are left out; required vs optional is resolved here, at the parsing
// boundary, so nothing downstream sees loose maps.

type listingResponse struct {
	Data struct {
		List []listingItem `json:"list"`
	} `json:"data"`
}

type listingItem struct {
	GoodsNo      json.Number `json:"goodsNo"`
	BrandName    string      `json:"brandName"`
	GoodsName    string      `json:"goodsName"`
	Price        int         `json:"price"`
	ReviewCount  int         `json:"reviewCount"`
	ReviewScore  float64     `json:"reviewScore"`
	Thumbnail    string      `json:"thumbnail"`
	GoodsLinkURL string      `json:"goodsLinkUrl"`
}

type reviewResponse struct {
	Data struct {
		List []reviewItem `json:"list"`
	} `json:"data"`
}

type reviewItem struct {
	No              json.Number `json:"no"`
	CreateDate      string      `json:"createDate"`
	Content         string      `json:"content"`
	Grade           int         `json:"grade"`
	UserProfileInfo struct {
		UserNickName string `json:"userNickName"`
	} `json:"userProfileInfo"`
}
