package passback

import (
	"text/template"
)

var houseAdTemplate = template.Must(template.New("houseAd").Parse(
	`{{.URL}}?w={{.Width}}&h={{.Height}}&v={{.CacheBuster}}{{if .HasPassback}}&{{.Passback}}{{end}}{{if .PredRA}}&pred_ra=yes{{end}}`))

var mediaForceTemplate = template.Must(template.New("mediaForce").Parse(
	`{{.URL}}?tagtype=JS&pid={{.PID}}&subid={{.SubID}}&cm=&enc=`))

var adSenseTemplate = template.Must(template.New("adSense").Parse(`<script type="text/javascript">
  window.google_ad_client = "{{.Client}}";
  window.google_ad_slot = "{{.Slot}}";
  window.google_ad_width = {{.Width}};
  window.google_ad_height = {{.Height}};
</script>
<script type="text/javascript" src="{{.ScriptURL}}"></script>`))

var oneWorldTemplate = template.Must(template.New("oneWorld").Parse(`<script defer>
  window.onload = function loadOneWorld () {
    document.body.style.margin = 0;
    document.body.style.padding = 0;
    var dv = document.createElement('div');
    var el = document.createElement('script');
    dv.id = 'RTK_{{.AdUnitID}}';
    document.body.appendChild(dv);
    el.async = true;
    el.type = 'text/javascript';
    el.src = ((window.top.document.location.protocol === 'http:') ? 'http:' : 'https:')
    + '//{{.Host}}/{{.AdAuctionID}}/{{.AdUnitID}}/jita.js';
    document.body.appendChild(el);
  }
</script>`))

var adsterraTemplate = template.Must(template.New("adsterra").Parse(`<script type="text/javascript">
  atOptions = {
    'key' : '{{.Key}}',
    'format' : 'iframe',
    'height' : {{.Height}},
    'width' : {{.Width}},
    'params' : {}
  };
  document.write('<scr' + 'ipt type="text/javascript" src="http' + (location.protocol === 'https:' ? 's' : '') + '://{{.Host}}/{{.Key}}/invoke.js"></scr' + 'ipt>');
</script>`))

var amityTemplate = template.Must(template.New("amity").Parse(`<script
  async
  id="AV{{.TagID}}"
  type="text/javascript"
  src="{{.URL}}?AV_TAGID={{.TagID}}&AV_PUBLISHERID={{.PublisherID}}"
></script>`))
